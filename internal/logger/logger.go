package logger

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// Init настраивает стандартный логгер logrus. В production пишем JSON.
func Init(level string, jsonFormat bool) {
	l, err := logrus.ParseLevel(level)
	if err != nil {
		l = logrus.InfoLevel
	}
	if jsonFormat {
		logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"})
	}
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(l)
}

// RequestLogger: middleware логирования запросов для chi.
func RequestLogger(l logrus.FieldLogger) func(http.Handler) http.Handler {
	return middleware.RequestLogger(&logFormatter{logger: l})
}

type logFormatter struct {
	logger logrus.FieldLogger
}

func (f *logFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	return &logEntry{logger: f.logger.WithFields(logrus.Fields{
		"request_id": middleware.GetReqID(r.Context()),
		"method":     r.Method,
		"path":       r.URL.Path,
		"remote":     r.RemoteAddr,
	})}
}

type logEntry struct {
	logger logrus.FieldLogger
}

func (e *logEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ interface{}) {
	entry := e.logger.WithFields(logrus.Fields{
		"status":  status,
		"bytes":   bytes,
		"elapsed": elapsed.Round(time.Microsecond).String(),
	})
	switch {
	case status >= 500:
		entry.Error("request")
	case status >= 400:
		entry.Warn("request")
	default:
		entry.Info("request")
	}
}

func (e *logEntry) Panic(v interface{}, stack []byte) {
	e.logger.WithFields(logrus.Fields{
		"panic": v,
		"stack": string(stack),
	}).Error("panic")
}

// FromRequest: логгер с request_id текущего запроса.
func FromRequest(r *http.Request) *logrus.Entry {
	return logrus.WithField("request_id", middleware.GetReqID(r.Context()))
}
