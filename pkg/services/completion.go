package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"LenaAI/pkg/config"
	"LenaAI/pkg/metrics"

	"github.com/rs/zerolog"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ChatMessage struct {
	Role string
	Text string
}

// Completer produces one reply for an ordered, role-tagged context. Any
// failure is reported as an error wrapping ErrUpstream.
type Completer interface {
	Complete(ctx context.Context, chat []ChatMessage) (string, error)
}

func upstreamError(provider string, err error) error {
	if errors.Is(err, ErrUpstream) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrUpstream, provider, err)
}

// NewCompleter builds the completer selected by COMPLETION_PROVIDER, wrapped
// with latency/error metrics.
func NewCompleter(cfg *config.Config, log zerolog.Logger) (Completer, error) {
	var inner Completer
	switch cfg.Provider {
	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			log.Warn().Msg("[completion] OPENAI_API_KEY is not set; provider calls will fail")
		}
		inner = NewOpenAICompleter(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, cfg.ProviderTimeout)
	case config.ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			log.Warn().Msg("[completion] GEMINI_API_KEY is not set; provider calls will fail")
		}
		inner = NewGeminiCompleter(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL, cfg.ProviderTimeout)
	case config.ProviderMock:
		inner = MockCompleter{}
	default:
		return nil, fmt.Errorf("unknown completion provider %q", cfg.Provider)
	}
	log.Info().Str("provider", cfg.Provider).Str("model", cfg.ProviderModel()).Msg("[completion] provider ready")
	return &meteredCompleter{inner: inner, provider: cfg.Provider, log: log}, nil
}

type meteredCompleter struct {
	inner    Completer
	provider string
	log      zerolog.Logger
}

func (m *meteredCompleter) Complete(ctx context.Context, chat []ChatMessage) (string, error) {
	start := time.Now()
	reply, err := m.inner.Complete(ctx, chat)
	elapsed := time.Since(start)
	metrics.RecordProviderCall(m.provider, elapsed.Seconds(), err)
	if err != nil {
		m.log.Warn().Err(err).Str("provider", m.provider).Dur("latency", elapsed).Msg("[completion] call failed")
		return "", upstreamError(m.provider, err)
	}
	m.log.Debug().Str("provider", m.provider).Int("context_len", len(chat)).Dur("latency", elapsed).Msg("[completion] reply received")
	return reply, nil
}
