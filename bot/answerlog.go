package bot

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/depositbot/core"
	"gopkg.in/natefinch/lumberjack.v2"
)

// DefaultAnswerLogFile is where answer records go unless configured otherwise.
const DefaultAnswerLogFile = "deposit_bot.json"

// AnswerLog writes one JSON object per answered question:
//
//	{"time":"2024-05-01T10:00:00Z","username":"ivan","user_id":42,"question":"...","answer":"..."}
type AnswerLog struct {
	logger *slog.Logger
	closer io.Closer
}

// NewAnswerLog writes answer records to w.
func NewAnswerLog(w io.Writer) *AnswerLog {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return a
			}
			switch a.Key {
			case slog.LevelKey, slog.MessageKey:
				return slog.Attr{}
			case slog.TimeKey:
				return slog.String(slog.TimeKey, a.Value.Time().UTC().Format(time.RFC3339))
			}
			return a
		},
	})
	log := &AnswerLog{logger: slog.New(handler)}
	if c, ok := w.(io.Closer); ok {
		log.closer = c
	}
	return log
}

// OpenAnswerLog writes answer records to a size-rotated file.
func OpenAnswerLog(path string, maxSizeMB, maxBackups int) *AnswerLog {
	if path == "" {
		path = DefaultAnswerLogFile
	}
	return NewAnswerLog(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
	})
}

// Record writes one answer record.
func (l *AnswerLog) Record(ctx context.Context, user core.User, question, answer string) {
	l.logger.LogAttrs(ctx, slog.LevelInfo, "",
		slog.String("username", user.Username),
		slog.Int64("user_id", user.ID),
		slog.String("question", question),
		slog.String("answer", answer),
	)
}

// Close closes the underlying file, if any.
func (l *AnswerLog) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
