package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/diewo77/go-orders/auth"
	"github.com/diewo77/go-orders/gate"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const cachedAlice = `{"user_id":5,"email":"alice@example.com","level":"standard"}`

func aliceResolver(calls *int) gate.Resolver[uint, auth.Principal] {
	return gate.ResolverFunc[uint, auth.Principal](func(_ context.Context, uid uint) (auth.Principal, error) {
		*calls++
		if uid != 5 {
			return auth.Principal{}, errors.New("unknown")
		}
		return auth.Principal{UserID: 5, Email: "alice@example.com", Level: auth.LevelStandard}, nil
	})
}

func TestPrincipalCacheHit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	calls := 0
	c := NewPrincipalCache(db, aliceResolver(&calls), time.Minute, zap.NewNop())

	mock.ExpectGet("principal:5").SetVal(cachedAlice)

	p, err := c.Resolve(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", p.Email)
	assert.Zero(t, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPrincipalCacheMissPopulates(t *testing.T) {
	db, mock := redismock.NewClientMock()
	calls := 0
	c := NewPrincipalCache(db, aliceResolver(&calls), time.Minute, zap.NewNop())

	mock.ExpectGet("principal:5").RedisNil()
	mock.ExpectSet("principal:5", cachedAlice, time.Minute).SetVal("OK")

	p, err := c.Resolve(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, uint(5), p.UserID)
	assert.Equal(t, 1, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPrincipalCacheRedisDown(t *testing.T) {
	db, mock := redismock.NewClientMock()
	calls := 0
	c := NewPrincipalCache(db, aliceResolver(&calls), time.Minute, zap.NewNop())

	mock.ExpectGet("principal:5").SetErr(errors.New("connection refused"))
	mock.ExpectSet("principal:5", cachedAlice, time.Minute).SetErr(errors.New("connection refused"))

	p, err := c.Resolve(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, uint(5), p.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPrincipalCacheDoesNotCacheErrors(t *testing.T) {
	db, mock := redismock.NewClientMock()
	calls := 0
	c := NewPrincipalCache(db, aliceResolver(&calls), time.Minute, zap.NewNop())

	mock.ExpectGet("principal:9").RedisNil()

	_, err := c.Resolve(context.Background(), 9)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPrincipalCacheCorruptEntry(t *testing.T) {
	db, mock := redismock.NewClientMock()
	calls := 0
	c := NewPrincipalCache(db, aliceResolver(&calls), time.Minute, zap.NewNop())

	mock.ExpectGet("principal:5").SetVal("{not json")
	mock.ExpectSet("principal:5", cachedAlice, time.Minute).SetVal("OK")

	_, err := c.Resolve(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPrincipalCacheInvalidate(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewPrincipalCache(db, nil, time.Minute, zap.NewNop())

	mock.ExpectDel("principal:5").SetVal(1)

	require.NoError(t, c.Invalidate(context.Background(), 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}
