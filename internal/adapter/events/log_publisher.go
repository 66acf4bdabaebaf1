package events

import (
	"context"
	"log/slog"

	"github.com/rl1809/storefront/internal/core/domain"
)

// LogPublisher writes events to the structured log. Used when no brokers are configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event domain.Event) error {
	p.logger.InfoContext(ctx, "event",
		"event_id", event.ID,
		"type", event.Type,
		"lines", len(event.Lines),
		"total", event.Total.String(),
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
