// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.



package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/lexis/config"
	"github.com/poiesic/lexis/corpus"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "lexis",
		Usage: "Ask an author's essays questions and study English vocabulary",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file",
				Value:   config.DefaultPath,
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "corpus",
				Usage: "Corpus file, overrides corpus.path",
			},
			&cli.StringFlag{
				Name:  "splitter",
				Usage: "Passage splitter (line, recursive), overrides corpus.splitter.type",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address, overrides server.addr",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search the corpus",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "k",
						Usage: "Maximum number of results (0 uses search.k)",
					},
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Minimum similarity score (0 uses search.threshold)",
					},
					&cli.StringFlag{
						Name:  "mode",
						Usage: "Search mode (semantic, keyword)",
						Value: "semantic",
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Answer a question from the corpus in the author's voice",
				ArgsUsage: "<question>",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "k",
						Usage: "Maximum number of passages to ground the answer on (0 uses search.ask_k)",
					},
				},
			},
			{
				Name:   "split",
				Usage:  "Split the corpus and print the passages",
				Action: splitCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "show",
						Usage: "Number of passages to print",
						Value: 10,
					},
				},
			},
			{
				Name:   "estimate",
				Usage:  "Estimate your English vocabulary size with a two stage quiz",
				Action: estimateCommand,
			},
			{
				Name:      "mine",
				Usage:     "Extract vocabulary worth studying from English text",
				ArgsUsage: "[text]",
				Action:    mineCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Read the text from a file instead of the arguments (- for stdin)",
					},
					&cli.IntFlag{
						Name:  "vocabulary",
						Usage: "Known vocabulary size used to pick the mining tier (0 uses the default tier)",
					},
				},
			},
		},
	}
}

// setupLogger configures the slog default logger based on the log-level flag.
func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

// loadConfig reads the configuration file and applies the global overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if c.IsSet("corpus") {
		cfg.Corpus.Path = c.String("corpus")
	}
	if c.IsSet("splitter") {
		cfg.Corpus.Splitter.Type = c.String("splitter")
	}
	if c.IsSet("addr") {
		cfg.Server.Addr = c.String("addr")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newSplitter(cfg *config.Config) (corpus.Splitter, error) {
	splitter, err := corpus.NewSplitter(cfg.SplitterConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create splitter: %w", err)
	}
	return splitter, nil
}
