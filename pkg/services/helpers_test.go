package services

import (
	"context"
	"sync"
	"testing"

	"LenaAI/pkg/database"
	"LenaAI/pkg/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := database.Open(database.DriverSQLite, database.MemoryDSN(t.Name()), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return store.New(db)
}

// stubCompleter returns a fixed reply (or error) and records every context it saw.
type stubCompleter struct {
	mu    sync.Mutex
	reply string
	err   error
	calls [][]ChatMessage
}

func (s *stubCompleter) Complete(ctx context.Context, chat []ChatMessage) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, append([]ChatMessage(nil), chat...))
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func (s *stubCompleter) lastCall(t *testing.T) []ChatMessage {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.calls, "completer was not called")
	return s.calls[len(s.calls)-1]
}
