package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// requestLogger adapts logrus to chi's RequestLogger middleware.
type requestLogger struct {
	logger logrus.FieldLogger
}

func (l *requestLogger) NewLogEntry(r *http.Request) middleware.LogEntry {
	return &requestLogEntry{
		log: l.logger.WithFields(logrus.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"remote":     r.RemoteAddr,
		}),
	}
}

type requestLogEntry struct {
	log logrus.FieldLogger
}

func (e *requestLogEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ any) {
	entry := e.log.WithFields(logrus.Fields{
		"status":  status,
		"bytes":   bytes,
		"elapsed": elapsed.Round(time.Millisecond),
	})
	if status >= http.StatusInternalServerError {
		entry.Warn("Request failed")
		return
	}
	entry.Info("Request handled")
}

func (e *requestLogEntry) Panic(v any, stack []byte) {
	e.log.WithFields(logrus.Fields{
		"panic": v,
		"stack": string(stack),
	}).Error("Handler panicked")
}
