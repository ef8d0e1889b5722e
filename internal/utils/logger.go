package utils

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Fields is the structured payload attached to every log entry. The pipeline
// logs exclusively through the helpers below, so each message carries fields.
type Fields = logrus.Fields

type contextKey string

const (
	ctxKeyCorrelationID contextKey = "correlation_id"
	ctxKeyRequestID     contextKey = "request_id"
)

var logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})

	// An unset or unparsable LOG_LEVEL falls back to info.
	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	return l
}

// GetLogger returns the process-wide logger for code running outside a
// request, such as startup and shutdown.
func GetLogger() *logrus.Logger {
	return logger
}

// WithCorrelationID and WithRequestID stamp the request identity onto the
// context; the logging helpers read it back on every entry.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, ctxKeyCorrelationID, correlationID)
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, requestID)
}

func GenerateCorrelationID() string {
	return uuid.New().String()
}

func GenerateRequestID() string {
	return "req_" + uuid.New().String()
}

func contextValue(ctx context.Context, key contextKey) string {
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

func entryFromContext(ctx context.Context) *logrus.Entry {
	entry := logrus.NewEntry(logger)
	if id := contextValue(ctx, ctxKeyCorrelationID); id != "" {
		entry = entry.WithField("correlation_id", id)
	}
	if id := contextValue(ctx, ctxKeyRequestID); id != "" {
		entry = entry.WithField("request_id", id)
	}
	return entry
}

func LogInfo(ctx context.Context, message string, fields Fields) {
	entryFromContext(ctx).WithFields(fields).Info(message)
}

func LogError(ctx context.Context, message string, err error, fields Fields) {
	entryFromContext(ctx).WithError(err).WithFields(fields).Error(message)
}

func LogWarn(ctx context.Context, message string, fields Fields) {
	entryFromContext(ctx).WithFields(fields).Warn(message)
}

func LogDebug(ctx context.Context, message string, fields Fields) {
	entryFromContext(ctx).WithFields(fields).Debug(message)
}
