// Package eventlog is the structured event side-channel. Sinks are
// fire-and-forget: a failing sink must never fail the calling request path.
package eventlog

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/support-router/internal/store"
)

// Event levels recorded in the sink.
const (
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// Sink receives structured events from the routing core.
type Sink interface {
	Log(ctx context.Context, level, component, event string, details map[string]any)
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) Log(ctx context.Context, level, component, event string, details map[string]any) {}

// storeSink persists events through the EventLogStore.
type storeSink struct {
	logs   store.EventLogStore
	logger *zap.Logger
}

// NewStoreSink creates a sink writing to the durable event log.
func NewStoreSink(logs store.EventLogStore, logger *zap.Logger) Sink {
	return &storeSink{logs: logs, logger: logger}
}

func (s *storeSink) Log(ctx context.Context, level, component, event string, details map[string]any) {
	if err := s.logs.InsertLog(ctx, level, component, event, details); err != nil {
		s.logger.Warn("event sink write failed",
			zap.String("component", component),
			zap.String("event", event),
			zap.Error(err))
	}
}

// zapSink mirrors events to the process logger.
type zapSink struct {
	logger *zap.Logger
}

// NewZapSink creates a sink backed by the zap logger.
func NewZapSink(logger *zap.Logger) Sink {
	return &zapSink{logger: logger}
}

func (s *zapSink) Log(ctx context.Context, level, component, event string, details map[string]any) {
	fields := []zap.Field{
		zap.String("component", component),
		zap.Any("details", details),
	}
	switch level {
	case LevelWarn:
		s.logger.Warn(event, fields...)
	case LevelError:
		s.logger.Error(event, fields...)
	default:
		s.logger.Info(event, fields...)
	}
}

// multiSink fans one event out to several sinks.
type multiSink struct {
	sinks []Sink
}

// Multi combines sinks; nil entries are skipped.
func Multi(sinks ...Sink) Sink {
	filtered := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			filtered = append(filtered, s)
		}
	}
	return &multiSink{sinks: filtered}
}

func (m *multiSink) Log(ctx context.Context, level, component, event string, details map[string]any) {
	for _, s := range m.sinks {
		s.Log(ctx, level, component, event, details)
	}
}
