package app

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestRedisSessionStore_Save(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		store := NewRedisSessionStore(db, "ussd-session", 15*time.Minute)
		ctx := context.Background()

		sess := &Session{State: StateAwaitingAmount, UnitID: "AB12CD"}
		payload, err := json.Marshal(sess)
		assert.NoError(t, err)

		mock.ExpectSet("ussd-session:sess-1", payload, 15*time.Minute).SetVal("OK")

		err = store.Save(ctx, "sess-1", sess)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		store := NewRedisSessionStore(db, "ussd-session", 15*time.Minute)
		ctx := context.Background()

		sess := NewSession()
		payload, err := json.Marshal(sess)
		assert.NoError(t, err)

		mock.ExpectSet("ussd-session:sess-1", payload, 15*time.Minute).SetErr(redis.ErrClosed)

		err = store.Save(ctx, "sess-1", sess)

		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRedisSessionStore_Get(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		store := NewRedisSessionStore(db, "ussd-session", 15*time.Minute)
		ctx := context.Background()

		stored := &Session{State: StateAwaitingPhone, UnitID: "AB12CD", Amount: 1500}
		payload, err := json.Marshal(stored)
		assert.NoError(t, err)

		mock.ExpectGet("ussd-session:sess-1").SetVal(string(payload))

		sess, err := store.Get(ctx, "sess-1")

		assert.NoError(t, err)
		assert.Equal(t, stored, sess)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing session returns nil without error", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		store := NewRedisSessionStore(db, "ussd-session", 15*time.Minute)
		ctx := context.Background()

		mock.ExpectGet("ussd-session:sess-1").RedisNil()

		sess, err := store.Get(ctx, "sess-1")

		assert.NoError(t, err)
		assert.Nil(t, sess)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Corrupt payload", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		store := NewRedisSessionStore(db, "ussd-session", 15*time.Minute)
		ctx := context.Background()

		mock.ExpectGet("ussd-session:sess-1").SetVal("{not json")

		sess, err := store.Get(ctx, "sess-1")

		assert.Error(t, err)
		assert.Nil(t, sess)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRedisSessionStore_Delete(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisSessionStore(db, "ussd-session", 15*time.Minute)
	ctx := context.Background()

	mock.ExpectDel("ussd-session:sess-1").SetVal(1)

	err := store.Delete(ctx, "sess-1")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewRedisSessionStore_Defaults(t *testing.T) {
	db, _ := redismock.NewClientMock()

	store := NewRedisSessionStore(db, "  ", 0)

	assert.Equal(t, "ussd-session", store.prefix)
	assert.Equal(t, 15*time.Minute, store.ttl)

	store = NewRedisSessionStore(db, "sessions:", time.Minute)
	assert.Equal(t, "sessions", store.prefix)
	assert.Equal(t, time.Minute, store.ttl)
}
