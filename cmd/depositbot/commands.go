package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/depositbot"
	"github.com/poiesic/depositbot/bot"
	"github.com/poiesic/depositbot/core"
	"github.com/poiesic/depositbot/ingestion"
	"github.com/poiesic/depositbot/reembed"
	"github.com/poiesic/depositbot/storage"
	"github.com/urfave/cli/v2"
)

func serveCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := cfg.RequireTelegram(); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	assistant, err := depositbot.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to open assistant: %w", err)
	}
	defer assistant.Close()

	if cfg.Index.BuildOnStart {
		stats, built, err := assistant.BuildIndexIfEmpty(ctx)
		if err != nil {
			return fmt.Errorf("failed to build index: %w", err)
		}
		if built {
			slog.Info("index built", "files", stats.Files, "chunks", stats.Chunks, "duration", stats.Duration)
		}
	}

	telegram, err := bot.NewTelegram(cfg.Telegram.Token, bot.WithPollTimeout(cfg.Telegram.PollTimeout))
	if err != nil {
		return fmt.Errorf("failed to connect to Telegram: %w", err)
	}

	var handlerOpts []bot.HandlerOption
	if cfg.AnswerLog.Path != "" {
		answers := bot.OpenAnswerLog(cfg.AnswerLog.Path, cfg.AnswerLog.MaxSizeMB, cfg.AnswerLog.MaxBackups)
		defer answers.Close()
		handlerOpts = append(handlerOpts, bot.WithAnswerLog(answers))
	}

	handler, err := assistant.NewHandler(telegram, handlerOpts...)
	if err != nil {
		return err
	}
	dispatcher, err := bot.NewDispatcher(handler, bot.WithPoolSize(cfg.Telegram.Workers))
	if err != nil {
		return err
	}
	defer dispatcher.Release()

	slog.Info("bot started", "stand", cfg.LLM.Stand, "chat_model", cfg.LLM.ChatModel, "router", cfg.Router.Enabled)
	if err := telegram.Run(ctx, dispatcher); err != nil {
		return err
	}
	slog.Info("shutting down")
	return nil
}

func indexCommand(c *cli.Context) error {
	ctx, stop := signalContext()
	defer stop()

	assistant, err := openAssistant(c)
	if err != nil {
		return err
	}
	defer assistant.Close()

	dir := c.String("docs")
	if dir == "" {
		dir = assistant.Config().Index.Docs
	}

	pipeline, err := assistant.NewIngestionPipeline(ingestion.WithReplace(c.Bool("replace")))
	if err != nil {
		return err
	}
	defer pipeline.Release()

	fmt.Fprintf(os.Stderr, "Documents: %s\n", dir)
	fmt.Fprintf(os.Stderr, "Storage: %s\n", assistant.Config().Storage.Path)
	fmt.Fprintln(os.Stderr)

	stats, err := pipeline.Ingest(ctx, dir)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	total, err := assistant.Index().Count(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Indexed %d chunks from %d files in %v (%d in index)\n",
		stats.Chunks, stats.Files, stats.Duration.Round(time.Millisecond), total)
	return nil
}

// consoleSender prints replies instead of sending them to a chat.
type consoleSender struct {
	w io.Writer
}

func (s consoleSender) Send(_ context.Context, _ int64, text string) error {
	_, err := fmt.Fprintln(s.w, text)
	return err
}

func askCommand(c *cli.Context) error {
	ctx, stop := signalContext()
	defer stop()

	assistant, err := openAssistant(c)
	if err != nil {
		return err
	}
	defer assistant.Close()

	handler, err := assistant.NewHandler(consoleSender{w: os.Stdout})
	if err != nil {
		return err
	}
	return askLoop(ctx, handler, c.Int64("chat"), os.Stdin, os.Stdout)
}

// askLoop feeds each input line to the handler as a message from the console user.
func askLoop(ctx context.Context, handler bot.MessageHandler, chatID int64, in io.Reader, out io.Writer) error {
	user := core.User{ID: chatID, Username: "console"}
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		start := time.Now()
		if err := handler.Handle(ctx, bot.IncomingMessage{ChatID: chatID, User: user, Text: text}); err != nil {
			return err
		}
		fmt.Fprintf(out, "(%v)\n", time.Since(start).Round(time.Millisecond))
		if ctx.Err() != nil {
			return nil
		}
	}
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("query is required")
	}

	ctx, stop := signalContext()
	defer stop()

	assistant, err := openAssistant(c)
	if err != nil {
		return err
	}
	defer assistant.Close()

	k := c.Int("k")
	if k <= 0 {
		k = assistant.Config().Index.K
	}
	_, err = assistant.Index().SearchWithMonitor(ctx, query, k, &printMonitor{w: os.Stdout})
	return err
}

func sessionListCommand(c *cli.Context) error {
	assistant, err := openAssistant(c)
	if err != nil {
		return err
	}
	defer assistant.Close()

	chats, err := assistant.Sessions().Chats(c.Context)
	if err != nil {
		return err
	}
	for _, id := range chats {
		fmt.Println(id)
	}
	return nil
}

func sessionExportCommand(c *cli.Context) error {
	assistant, err := openAssistant(c)
	if err != nil {
		return err
	}
	defer assistant.Close()

	chatID := c.Int64("chat")
	state, err := assistant.Sessions().Export(c.Context, chatID)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("no session stored for chat %d", chatID)
	}
	if err != nil {
		return err
	}
	return writeJSON(os.Stdout, state)
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(v)
}

func reembedCommand(c *cli.Context) error {
	ctx, stop := signalContext()
	defer stop()

	reembedConfig := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	assistant, err := openAssistant(c)
	if err != nil {
		return err
	}
	defer assistant.Close()

	reembedder, err := assistant.NewReembedder(os.Stderr, reembedConfig)
	if err != nil {
		return err
	}

	cfg := assistant.Config()
	fmt.Fprintf(os.Stderr, "Storage: %s\n", cfg.Storage.Path)
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", cfg.LLM.EmbeddingModel)
	fmt.Fprintln(os.Stderr)

	if err := reembedder.Run(ctx); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}
