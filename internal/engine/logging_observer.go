package engine

import "log/slog"

// LoggingObserver is a simple observer that logs all events using structured logging
type LoggingObserver struct {
	logger *slog.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver() *LoggingObserver {
	return &LoggingObserver{
		logger: slog.Default(),
	}
}

// OnEvent implements the Observer interface
func (lo *LoggingObserver) OnEvent(event Event) {
	attrs := []any{
		"event", event.Type,
		"op_id", event.OpID,
		"database", event.Database,
		"table", event.Table,
		"data", event.Data,
	}

	if event.Err != nil {
		lo.logger.Warn("store operation failed", append(attrs, "error", event.Err)...)
		return
	}
	lo.logger.Info("store operation", attrs...)
}
