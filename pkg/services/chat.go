package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"LenaAI/models"
	"LenaAI/pkg/metrics"
	"LenaAI/pkg/store"

	"github.com/rs/zerolog"
)

// SignupPolicy decides what happens when a chat arrives for an unknown user.
type SignupPolicy int

const (
	// SignupImplicit creates the user on first contact.
	SignupImplicit SignupPolicy = iota
	// SignupRequired rejects unknown users with ErrUserNotFound.
	SignupRequired
)

// Repository is the persistence the chat flow needs. *store.Store implements it.
type Repository interface {
	TurnReader
	FindUserByExternalID(ctx context.Context, externalID string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUserName(ctx context.Context, userID uint, name *string) error
	History(ctx context.Context, userID uint, limit int) ([]models.Message, error)
	SaveExchange(ctx context.Context, userID uint, userText, reply string) error
}

// TokenAuthenticator resolves a bearer token to an external identifier.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

type ChatServiceDeps struct {
	Repo         Repository
	Completer    Completer
	Auth         TokenAuthenticator // required for HandleAuthenticatedChat only
	Policy       SignupPolicy
	HistoryLimit int
	Persona      string
	Logger       zerolog.Logger
}

// ChatService runs one exchange per call: resolve the user, build the
// context, ask the provider, persist both turns, return the reply. Nothing is
// stored when the provider fails. Calls for the same user are not serialised.
type ChatService struct {
	repo      Repository
	builder   *ContextBuilder
	completer Completer
	auth      TokenAuthenticator
	policy    SignupPolicy
	log       zerolog.Logger
}

func NewChatService(d ChatServiceDeps) *ChatService {
	return &ChatService{
		repo:      d.Repo,
		builder:   NewContextBuilder(d.Repo, d.HistoryLimit, d.Persona),
		completer: d.Completer,
		auth:      d.Auth,
		policy:    d.Policy,
		log:       d.Logger,
	}
}

// HandleAuthenticatedChat resolves the caller from token, then behaves like HandleChat.
func (s *ChatService) HandleAuthenticatedChat(ctx context.Context, token, text string) (string, error) {
	if s.auth == nil {
		return "", fmt.Errorf("%w: token authentication is not enabled", ErrAuth)
	}
	externalID, err := s.auth.Authenticate(ctx, token)
	if err != nil {
		metrics.RecordExchange("auth_error")
		return "", err
	}
	return s.HandleChat(ctx, externalID, text)
}

func (s *ChatService) HandleChat(ctx context.Context, externalID, text string) (string, error) {
	if strings.TrimSpace(externalID) == "" {
		return "", fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyMessage
	}
	log := s.log.With().Str("user", externalID).Logger()

	user, err := s.ResolveUser(ctx, externalID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			metrics.RecordExchange("user_not_found")
		} else {
			metrics.RecordExchange("store_error")
		}
		return "", err
	}

	chat, err := s.builder.Build(ctx, user, text)
	if err != nil {
		metrics.RecordExchange("store_error")
		return "", fmt.Errorf("build context: %w", err)
	}

	reply, err := s.completer.Complete(ctx, chat)
	if err != nil {
		metrics.RecordExchange("upstream_error")
		log.Warn().Err(err).Msg("[chat] provider failed; nothing persisted")
		return "", upstreamError("completer", err)
	}

	if err := s.repo.SaveExchange(ctx, user.ID, text, reply); err != nil {
		metrics.RecordExchange("store_error")
		return "", fmt.Errorf("persist exchange: %w", err)
	}

	metrics.RecordExchange("ok")
	log.Info().Int("context_len", len(chat)).Int("reply_len", len(reply)).Msg("[chat] exchange stored")
	return reply, nil
}

// ResolveUser finds the user by external id, creating it under SignupImplicit.
func (s *ChatService) ResolveUser(ctx context.Context, externalID string) (*models.User, error) {
	user, err := s.repo.FindUserByExternalID(ctx, externalID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if s.policy == SignupRequired {
		return nil, ErrUserNotFound
	}

	user = &models.User{ExternalID: externalID}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// a concurrent first message created it
			return s.repo.FindUserByExternalID(ctx, externalID)
		}
		return nil, err
	}
	metrics.RecordUserCreated("signup")
	s.log.Info().Str("user", externalID).Uint("id", user.ID).Msg("[chat] user created on first message")
	return user, nil
}

// lookupUser never creates users.
func (s *ChatService) lookupUser(ctx context.Context, externalID string) (*models.User, error) {
	user, err := s.repo.FindUserByExternalID(ctx, externalID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// History returns the latest limit turns of the user, oldest first.
func (s *ChatService) History(ctx context.Context, externalID string, limit int) ([]models.Message, error) {
	user, err := s.lookupUser(ctx, externalID)
	if err != nil {
		return nil, err
	}
	return s.repo.History(ctx, user.ID, limit)
}

func (s *ChatService) Profile(ctx context.Context, externalID string) (*models.User, error) {
	return s.lookupUser(ctx, externalID)
}

// Rename sets the display name; an empty name clears it.
func (s *ChatService) Rename(ctx context.Context, externalID, name string) (*models.User, error) {
	user, err := s.lookupUser(ctx, externalID)
	if err != nil {
		return nil, err
	}
	var ptr *string
	if name = strings.TrimSpace(name); name != "" {
		ptr = &name
	}
	if err := s.repo.UpdateUserName(ctx, user.ID, ptr); err != nil {
		return nil, err
	}
	user.Name = ptr
	return user, nil
}
