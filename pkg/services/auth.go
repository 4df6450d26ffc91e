package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"LenaAI/models"
	"LenaAI/pkg/metrics"
	"LenaAI/pkg/store"
	tokenstore "LenaAI/pkg/token"
	utils "LenaAI/pkg/utills"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// UserCreator is the slice of the store registration and login need.
type UserCreator interface {
	FindUserByExternalID(ctx context.Context, externalID string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
}

// AuthService registers users, checks passwords and issues HS256 bearer
// tokens whose subject is the user's external identifier.
type AuthService struct {
	users   UserCreator
	secret  []byte
	ttl     time.Duration
	revoked *tokenstore.Store
	now     func() time.Time
	log     zerolog.Logger
}

func NewAuthService(users UserCreator, secret string, ttl time.Duration, revoked *tokenstore.Store, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:   users,
		secret:  []byte(secret),
		ttl:     ttl,
		revoked: revoked,
		now:     time.Now,
		log:     log,
	}
}

func (s *AuthService) Register(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		metrics.RecordAuth("register", "invalid")
		return fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}
	if !utils.IsStrongPassword(password) {
		metrics.RecordAuth("register", "invalid")
		return ErrWeakPassword
	}

	if _, err := s.users.FindUserByExternalID(ctx, username); err == nil {
		metrics.RecordAuth("register", "exists")
		return ErrUserExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	user := models.User{ExternalID: username}
	if err := user.SetPassword(password); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			metrics.RecordAuth("register", "exists")
			return ErrUserExists
		}
		return err
	}

	metrics.RecordAuth("register", "ok")
	metrics.RecordUserCreated("register")
	s.log.Info().Str("user", username).Msg("[auth] user registered")
	return nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	user, err := s.users.FindUserByExternalID(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.RecordAuth("login", "denied")
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if !user.CheckPassword(password) {
		metrics.RecordAuth("login", "denied")
		return "", ErrInvalidCredentials
	}

	token, err := s.issue(user.ExternalID)
	if err != nil {
		return "", err
	}
	metrics.RecordAuth("login", "ok")
	return token, nil
}

func (s *AuthService) issue(subject string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		ID:        uuid.NewString(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *AuthService) parse(token string) (*jwt.RegisteredClaims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("%w: token is missing", ErrAuth)
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuth, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", ErrAuth)
	}
	if s.revoked != nil && s.revoked.IsRevoked(claims.ID) {
		return nil, fmt.Errorf("%w: token has been revoked", ErrAuth)
	}
	return claims, nil
}

// Authenticate returns the external identifier carried by a valid token.
func (s *AuthService) Authenticate(ctx context.Context, token string) (string, error) {
	claims, err := s.parse(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// Logout revokes the token until its natural expiry.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return err
	}
	if s.revoked != nil && claims.ExpiresAt != nil {
		s.revoked.RevokeToken(claims.ID, claims.ExpiresAt.Time)
	}
	metrics.RecordAuth("logout", "ok")
	return nil
}
