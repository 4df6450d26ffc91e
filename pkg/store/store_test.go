package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"LenaAI/models"
	"LenaAI/pkg/database"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Open(database.DriverSQLite, database.MemoryDSN(t.Name()), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return New(db)
}

func TestCreateAndFindUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.FindUserByExternalID(ctx, "alice")
	assert.ErrorIs(t, err, ErrNotFound)

	u := &models.User{ExternalID: "alice"}
	require.NoError(t, s.CreateUser(ctx, u))
	assert.NotZero(t, u.ID)

	got, err := s.FindUserByExternalID(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Nil(t, got.PasswordHash)
	assert.Nil(t, got.Name)
}

func TestCreateUserDuplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, &models.User{ExternalID: "bob"}))
	err := s.CreateUser(ctx, &models.User{ExternalID: "bob"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestCreateUserDuplicateWithoutDriverTranslation(t *testing.T) {
	dsn := database.MemoryDSN(t.Name())
	migrated, err := database.Open(database.DriverSQLite, dsn, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := migrated.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	raw, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := raw.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	s := New(raw)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, &models.User{ExternalID: "bob"}))
	err = s.CreateUser(ctx, &models.User{ExternalID: "bob"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestTranslateDriverMessages(t *testing.T) {
	cases := map[string]error{
		"UNIQUE constraint failed: users.user_id":                               ErrDuplicate,
		"Error 1062 (23000): Duplicate entry 'bob' for key 'idx_users_user_id'": ErrDuplicate,
		`ERROR: duplicate key value violates unique constraint "idx_users_user_id" (SQLSTATE 23505)`: ErrDuplicate,
	}
	for msg, want := range cases {
		assert.ErrorIs(t, translate(errors.New(msg)), want, msg)
	}

	assert.ErrorIs(t, translate(gorm.ErrRecordNotFound), ErrNotFound)
	assert.ErrorIs(t, translate(gorm.ErrDuplicatedKey), ErrDuplicate)
	assert.NoError(t, translate(nil))
	other := errors.New("disk I/O error")
	assert.Equal(t, other, translate(other))
}

func TestUpdateUserName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := &models.User{ExternalID: "carol"}
	require.NoError(t, s.CreateUser(ctx, u))

	name := "Carol"
	require.NoError(t, s.UpdateUserName(ctx, u.ID, &name))
	got, err := s.FindUserByExternalID(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, "Carol", got.DisplayName())

	assert.ErrorIs(t, s.UpdateUserName(ctx, 9999, &name), ErrNotFound)
}

func TestSaveExchangeAndRecentMessages(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := &models.User{ExternalID: "alice"}
	require.NoError(t, s.CreateUser(ctx, u))

	for i := 0; i < 3; i++ {
		require.NoError(t, s.SaveExchange(ctx, u.ID, fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i)))
	}

	recent, err := s.RecentMessages(ctx, u.ID, 4)
	require.NoError(t, err)
	require.Len(t, recent, 4)
	assert.Equal(t, "a2", recent[0].Text)
	assert.Equal(t, models.SenderAssistant, recent[0].Sender)
	assert.Equal(t, "q2", recent[1].Text)
	assert.Equal(t, models.SenderUser, recent[1].Sender)
	assert.Equal(t, "a1", recent[2].Text)
	assert.Equal(t, "q1", recent[3].Text)

	history, err := s.History(ctx, u.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 6)
	texts := make([]string, 0, len(history))
	for _, m := range history {
		texts = append(texts, m.Text)
	}
	assert.Equal(t, []string{"q0", "a0", "q1", "a1", "q2", "a2"}, texts)

	n, err := s.CountMessages(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 6, n)

	none, err := s.RecentMessages(ctx, u.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRecentMessagesScopedToUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := &models.User{ExternalID: "a"}
	b := &models.User{ExternalID: "b"}
	require.NoError(t, s.CreateUser(ctx, a))
	require.NoError(t, s.CreateUser(ctx, b))
	require.NoError(t, s.SaveExchange(ctx, a.ID, "from a", "to a"))

	msgs, err := s.RecentMessages(ctx, b.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestSaveExchangeRollsBackOnAssistantFailure(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := &models.User{ExternalID: "alice"}
	require.NoError(t, s.CreateUser(ctx, u))

	boom := errors.New("disk full")
	require.NoError(t, s.DB().Callback().Create().Before("gorm:create").Register("test:fail_assistant", func(tx *gorm.DB) {
		if m, ok := tx.Statement.Dest.(*models.Message); ok && m.Sender == models.SenderAssistant {
			_ = tx.AddError(boom)
		}
	}))

	err := s.SaveExchange(ctx, u.ID, "hi", "hello")
	assert.ErrorIs(t, err, boom)

	n, err := s.CountMessages(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, n, "user turn must not survive a failed assistant insert")
}
