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
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/depositbot"
	"github.com/poiesic/depositbot/config"
	"github.com/poiesic/depositbot/reembed"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "depositbot",
		Usage: "Telegram assistant answering deposit questions from a document knowledge base",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
				EnvVars: []string{"DEPOSITBOT_CONFIG"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Answer Telegram messages",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "telegram-token",
						Usage:   "Telegram Bot API token",
						EnvVars: []string{config.EnvTelegramToken},
					},
					&cli.StringFlag{
						Name:    "llm-token",
						Usage:   "Model endpoint bearer token",
						EnvVars: []string{config.EnvLLMToken},
					},
				},
			},
			{
				Name:   "index",
				Usage:  "Load a document directory into the vector index",
				Action: indexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "docs",
						Aliases: []string{"d"},
						Usage:   "Document directory (defaults to index.docs from the configuration)",
					},
					&cli.BoolFlag{
						Name:  "replace",
						Usage: "Drop previously indexed chunks of the same source before indexing",
					},
					&cli.StringFlag{
						Name:    "llm-token",
						Usage:   "Model endpoint bearer token",
						EnvVars: []string{config.EnvLLMToken},
					},
				},
			},
			{
				Name:   "ask",
				Usage:  "Ask questions from the console using a local session",
				Action: askCommand,
				Flags: []cli.Flag{
					&cli.Int64Flag{
						Name:  "chat",
						Usage: "Chat id the console session is stored under",
						Value: 0,
					},
					&cli.StringFlag{
						Name:    "llm-token",
						Usage:   "Model endpoint bearer token",
						EnvVars: []string{config.EnvLLMToken},
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Show the chunks retrieved for a query",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "k",
						Aliases: []string{"n"},
						Usage:   "Number of chunks to return (defaults to index.k from the configuration)",
					},
					&cli.StringFlag{
						Name:    "llm-token",
						Usage:   "Model endpoint bearer token",
						EnvVars: []string{config.EnvLLMToken},
					},
				},
			},
			{
				Name:  "session",
				Usage: "Inspect stored conversations",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List chat ids with stored sessions",
						Action: sessionListCommand,
					},
					{
						Name:   "export",
						Usage:  "Print a chat's conversation memory as JSON",
						Action: sessionExportCommand,
						Flags: []cli.Flag{
							&cli.Int64Flag{
								Name:     "chat",
								Usage:    "Chat id",
								Required: true,
							},
						},
					},
				},
			},
			{
				Name:   "reembed",
				Usage:  "Recompute the embedding of every indexed chunk",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to process in each batch",
						Value: reembed.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					&cli.StringFlag{
						Name:    "llm-token",
						Usage:   "Model endpoint bearer token",
						EnvVars: []string{config.EnvLLMToken},
					},
				},
			},
		},
	}
}

// loadConfig reads the configuration and applies token flags over it.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if token := c.String("telegram-token"); token != "" {
		cfg.Telegram.Token = token
	}
	if token := c.String("llm-token"); token != "" {
		cfg.LLM.Token = token
	}
	return cfg, nil
}

// openAssistant loads the configuration and opens the assistant over it.
func openAssistant(c *cli.Context) (*depositbot.Assistant, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	assistant, err := depositbot.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open assistant: %w", err)
	}
	return assistant, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", s)
	}
}

func setupLogger(c *cli.Context) error {
	level, err := parseLevel(c.String("log-level"))
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
