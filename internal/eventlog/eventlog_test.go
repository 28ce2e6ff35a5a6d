package eventlog

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/support-router/internal/store"
)

func TestStoreSinkPersists(t *testing.T) {
	st := store.NewMemoryStore()
	sink := NewStoreSink(st, zap.NewNop())

	sink.Log(context.Background(), LevelInfo, "Orchestrator", "query_routed", map[string]any{"ticket_id": "650932"})

	logs, err := st.ListLogs(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 {
		t.Fatalf("logs = %d, want 1", len(logs))
	}
	if logs[0].Component != "Orchestrator" || logs[0].Event != "query_routed" {
		t.Errorf("record = %+v", logs[0])
	}
	if logs[0].Details["ticket_id"] != "650932" {
		t.Errorf("details = %v, want ticket_id preserved", logs[0].Details)
	}
}

type failingLogStore struct {
	store.EventLogStore
}

func (failingLogStore) InsertLog(ctx context.Context, level, component, event string, details map[string]any) error {
	return errors.New("write failed")
}

func TestStoreSinkSwallowsWriteErrors(t *testing.T) {
	sink := NewStoreSink(failingLogStore{}, zap.NewNop())
	// must not panic or propagate anything
	sink.Log(context.Background(), LevelError, "Classifier", "classified", nil)
}

func TestMultiFansOutAndSkipsNil(t *testing.T) {
	a := store.NewMemoryStore()
	b := store.NewMemoryStore()
	sink := Multi(NewStoreSink(a, zap.NewNop()), nil, NewStoreSink(b, zap.NewNop()))

	sink.Log(context.Background(), LevelWarn, "LifecycleManager", "followup_ticket_missing", nil)

	for name, st := range map[string]*store.MemoryStore{"a": a, "b": b} {
		logs, err := st.ListLogs(context.Background(), 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(logs) != 1 {
			t.Errorf("sink %s received %d events, want 1", name, len(logs))
		}
	}
}

func TestNopSink(t *testing.T) {
	NopSink{}.Log(context.Background(), LevelInfo, "x", "y", map[string]any{"k": "v"})
}
