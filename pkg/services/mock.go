package services

import (
	"context"
	"fmt"
)

// MockCompleter answers locally and deterministically, for development
// without a provider key.
type MockCompleter struct{}

func (MockCompleter) Complete(ctx context.Context, chat []ChatMessage) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", upstreamError("mock", err)
	}
	var last string
	prior := 0
	for i, m := range chat {
		switch {
		case m.Role == RoleUser && i == len(chat)-1:
			last = m.Text
		case m.Role != RoleSystem:
			prior++
		}
	}
	if prior == 0 {
		return fmt.Sprintf("Hi! You said: %q. This is the start of our conversation.", last), nil
	}
	return fmt.Sprintf("You said: %q. I remember %d earlier messages.", last, prior), nil
}
