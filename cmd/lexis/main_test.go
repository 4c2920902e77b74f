package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/lexis/core"
	"github.com/poiesic/lexis/vocab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// testEnv writes a corpus and a config using the in-memory session store.
func testEnv(t *testing.T) (configPath, corpusPath string) {
	t.Helper()
	dir := t.TempDir()
	configPath = filepath.Join(dir, "lexis.yaml")
	corpusPath = filepath.Join(dir, "data.txt")
	require.NoError(t, os.WriteFile(configPath, []byte("sessions:\n  backend: memory\n"), 0o644))
	require.NoError(t, os.WriteFile(corpusPath, []byte("时间是最宝贵的资源\n学习英语要先积累词汇\n复利是世界第八大奇迹\n"), 0o644))
	return configPath, corpusPath
}

func runApp(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	app.Reader = strings.NewReader(stdin)
	err := app.Run(append([]string{"lexis"}, args...))
	return out.String(), err
}

func TestSplitCommand(t *testing.T) {
	configPath, corpusPath := testEnv(t)

	out, err := runApp(t, "", "--config", configPath, "--corpus", corpusPath, "--splitter", "line", "split", "--show", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Splitter: line")
	assert.Contains(t, out, "Passages: 3")
	assert.Contains(t, out, "[0] 时间是最宝贵的资源")
	assert.Contains(t, out, "[1] 学习英语要先积累词汇")
	assert.NotContains(t, out, "[2]")
}

func TestSplitCommand_MissingCorpus(t *testing.T) {
	configPath, _ := testEnv(t)

	_, err := runApp(t, "", "--config", configPath, "--corpus", filepath.Join(t.TempDir(), "absent.txt"), "split")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load corpus")
}

func TestGlobalFlags_InvalidSplitter(t *testing.T) {
	configPath, corpusPath := testEnv(t)

	_, err := runApp(t, "", "--config", configPath, "--corpus", corpusPath, "--splitter", "sentence", "split")
	assert.Error(t, err)
}

func TestSearchCommand_Keyword(t *testing.T) {
	configPath, corpusPath := testEnv(t)

	out, err := runApp(t, "", "--config", configPath, "--corpus", corpusPath, "--splitter", "line", "search", "--mode", "keyword", "英语")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 1 passages")
	assert.Contains(t, out, "学习英语要先积累词汇")
}

func TestSearchCommand_Validation(t *testing.T) {
	configPath, corpusPath := testEnv(t)

	t.Run("query is required", func(t *testing.T) {
		_, err := runApp(t, "", "--config", configPath, "search")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "query is required")
	})

	t.Run("invalid mode", func(t *testing.T) {
		_, err := runApp(t, "", "--config", configPath, "--corpus", corpusPath, "search", "--mode", "fuzzy", "时间")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid mode")
	})
}

func TestAskCommand_QuestionRequired(t *testing.T) {
	configPath, _ := testEnv(t)

	_, err := runApp(t, "", "--config", configPath, "ask", "  ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "question is required")
}

func TestMineCommand_TextRequired(t *testing.T) {
	configPath, _ := testEnv(t)

	_, err := runApp(t, "", "--config", configPath, "mine")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "text is required")
}

func TestEstimateCommand(t *testing.T) {
	configPath, _ := testEnv(t)

	stageOne := strings.Join(vocab.StageOneWords[:12], ", ")
	stageTwo := strings.Join(vocab.StageTwoWords[core.BucketIntermediate][:5], " ")
	stdin := stageOne + "\n" + "notaword\n" + stageTwo + "\n"

	out, err := runApp(t, stdin, "--config", configPath, "estimate")
	require.NoError(t, err)
	assert.Contains(t, out, "please answer from the list")
	assert.Contains(t, out, "Estimated vocabulary: 5500 words")
	assert.Contains(t, out, vocab.Instruction(core.TierUnder6000))
}

func TestEstimateCommand_InputEnds(t *testing.T) {
	configPath, _ := testEnv(t)

	_, err := runApp(t, "", "--config", configPath, "estimate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input ended")
}

func TestSplitWords(t *testing.T) {
	assert.Equal(t, []string{"apple", "banana", "cherry", "date"}, splitWords("apple, banana，cherry\tdate"))
	assert.Empty(t, splitWords("  ,  "))
}

func TestSetupLogger(t *testing.T) {
	newLoggerApp := func(value string) *cli.App {
		return &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "log-level",
					Aliases: []string{"l"},
					Value:   value,
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error {
				return nil
			},
		}
	}

	for _, level := range []string{"debug", "info", "warn", "error", "DEBUG", "WaRn"} {
		t.Run(level, func(t *testing.T) {
			require.NoError(t, newLoggerApp("info").Run([]string{"test", "--log-level", level}))
		})
	}

	t.Run("alias -l", func(t *testing.T) {
		require.NoError(t, newLoggerApp("info").Run([]string{"test", "-l", "debug"}))
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		err := newLoggerApp("info").Run([]string{"test", "--log-level", "invalid"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}
