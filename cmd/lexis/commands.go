package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/lexis"
	"github.com/poiesic/lexis/ai/openai"
	"github.com/poiesic/lexis/api"
	"github.com/poiesic/lexis/core"
	"github.com/poiesic/lexis/corpus"
	"github.com/poiesic/lexis/search"
	"github.com/poiesic/lexis/storage/badger"
	"github.com/poiesic/lexis/vocab"
	"github.com/urfave/cli/v2"
)

func serveCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	engine, err := lexis.NewEngine(cfg)
	if err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}
	defer engine.Close()

	if err := engine.StartMaintenance(); err != nil {
		return fmt.Errorf("failed to schedule maintenance: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	router := api.NewRouter(engine, cfg.Server)
	if err := api.NewServer(cfg.Server.Addr, router).Run(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func queryArg(c *cli.Context, what string) (string, error) {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return "", fmt.Errorf("%s is required", what)
	}
	return query, nil
}

func searchCommand(c *cli.Context) error {
	query, err := queryArg(c, "query")
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	engine, err := lexis.NewEngine(cfg, lexis.WithProgress(os.Stderr))
	if err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}
	defer engine.Close()

	ctx := context.Background()
	var results []core.ScoredResult
	switch mode := strings.ToLower(c.String("mode")); mode {
	case api.ModeSemantic:
		opts := search.Options{K: c.Int("k"), Threshold: c.Float64("threshold")}
		results, err = engine.SearchWithMonitor(ctx, query, opts, newLogMonitor())
	case api.ModeKeyword:
		results, err = engine.Keyword(ctx, query, c.Int("k"))
	default:
		return fmt.Errorf("invalid mode %q: must be semantic or keyword", mode)
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	printResults(c.App.Writer, results)
	return nil
}

func printResults(w io.Writer, results []core.ScoredResult) {
	fmt.Fprintf(w, "Found %d passages\n", len(results))
	for i, r := range results {
		fmt.Fprintf(w, "%d: [%0.3f] (#%d) %s\n", i+1, r.Score, r.Passage.Index, r.Passage.Text)
	}
}

func askCommand(c *cli.Context) error {
	query, err := queryArg(c, "question")
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	engine, err := lexis.NewEngine(cfg, lexis.WithProgress(os.Stderr))
	if err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}
	defer engine.Close()

	result, err := engine.Ask(context.Background(), query, c.Int("k"))
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	w := c.App.Writer
	printResults(w, result.Results)
	fmt.Fprintln(w)
	fmt.Fprintln(w, result.Answer.Text)
	return nil
}

func splitCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	splitter, err := newSplitter(cfg)
	if err != nil {
		return err
	}

	doc, err := corpus.Load(cfg.Corpus.Path)
	if err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}
	passages := corpus.Passages(doc, splitter)

	w := c.App.Writer
	fmt.Fprintf(w, "Corpus: %s\n", doc.Path)
	fmt.Fprintf(w, "Splitter: %s\n", splitter.Name())
	fmt.Fprintf(w, "Passages: %d\n", len(passages))
	for _, p := range passages[:min(max(c.Int("show"), 0), len(passages))] {
		fmt.Fprintf(w, "\n[%d] %s\n", p.Index, p.Text)
	}
	return nil
}

func estimateCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	repo, err := badger.NewSessionStore("", cfg.Sessions.TTL)
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer repo.Close()

	quiz, err := vocab.NewService(repo)
	if err != nil {
		return err
	}

	const id = "cli"
	ctx := context.Background()
	in := bufio.NewScanner(c.App.Reader)
	w := c.App.Writer

	state, err := quiz.State(ctx, id)
	if err != nil {
		return err
	}
	for state.Stage != core.QuizStageDone {
		fmt.Fprintf(w, "\nWhich of these words do you know? (separate with spaces or commas, blank for none)\n%s\n> ",
			strings.Join(vocab.Words(state), "  "))
		if !in.Scan() {
			if err := in.Err(); err != nil {
				return err
			}
			return errors.New("quiz aborted: input ended")
		}

		known := splitWords(in.Text())
		var next *core.SessionState
		if state.Stage == core.QuizStageOne {
			next, err = quiz.SubmitStageOne(ctx, id, known)
		} else {
			next, err = quiz.SubmitStageTwo(ctx, id, known)
		}
		if errors.Is(err, core.ErrUnknownWord) {
			fmt.Fprintf(w, "%v, please answer from the list\n", err)
			continue
		}
		if err != nil {
			return err
		}
		state = next
	}

	p := state.Profile
	fmt.Fprintf(w, "\nEstimated vocabulary: %d words (%s, tier %s)\n%s\n", p.Estimate, p.Bucket, p.Tier, p.Instruction)
	return nil
}

func splitWords(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == '，' || r == ' ' || r == '\t'
	})
}

func mineCommand(c *cli.Context) error {
	text, err := mineInput(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	provider, err := openai.NewProvider(cfg.AIConfig())
	if err != nil {
		return fmt.Errorf("failed to create AI provider: %w", err)
	}
	defer provider.Close()

	opts := []vocab.MinerOption{vocab.WithMinChars(cfg.Miner.MinChars), vocab.WithMaxChars(cfg.Miner.MaxChars)}
	if cfg.Miner.Temperature != nil {
		opts = append(opts, vocab.WithMinerTemperature(*cfg.Miner.Temperature))
	}
	miner, err := vocab.NewMiner(provider.ChatModel(), opts...)
	if err != nil {
		return err
	}

	instruction := vocab.DefaultInstruction()
	if size := c.Int("vocabulary"); size > 0 {
		instruction = vocab.Instruction(vocab.TierFor(size))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	result := miner.Mine(ctx, text, instruction)
	if result.Err != nil {
		return fmt.Errorf("mining failed: %w", result.Err)
	}
	printItems(c.App.Writer, result)
	return nil
}

func mineInput(c *cli.Context) (string, error) {
	switch path := c.String("file"); path {
	case "":
		text := strings.Join(c.Args().Slice(), " ")
		if strings.TrimSpace(text) == "" {
			return "", errors.New("text is required")
		}
		return text, nil
	case "-":
		data, err := io.ReadAll(c.App.Reader)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", path, err)
		}
		return string(data), nil
	}
}

func printItems(w io.Writer, result core.MineResult) {
	if result.Truncated {
		fmt.Fprintln(w, "(input was truncated)")
	}
	for _, item := range result.Items {
		fmt.Fprintf(w, "%s [%s] %s\n", item.Headword, item.Category, item.Gloss)
		if item.Example != "" {
			fmt.Fprintf(w, "    %s\n", item.Example)
		}
	}
}
