package database

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedClock always reports the same instant
type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func TestInsertMessage(t *testing.T) {
	db := createTestDatabase(t)
	ctx := context.Background()

	msg, err := db.InsertMessage(ctx, "Pedro", "pedro@example.com", "Olá", "Tudo bem?")
	require.NoError(t, err)
	assert.Positive(t, msg.ID)
	assert.False(t, msg.CreatedAt.IsZero())

	msgs, err := db.ListMessages(ctx, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Olá", msgs[0].Subject)
	assert.Equal(t, "Tudo bem?", msgs[0].Message)
	assert.True(t, msg.CreatedAt.Equal(msgs[0].CreatedAt), "stored %v, returned %v", msgs[0].CreatedAt, msg.CreatedAt)
}

func TestInsertMessage_MissingFields(t *testing.T) {
	db := createTestDatabase(t)

	_, err := db.InsertMessage(context.Background(), "Pedro", "pedro@example.com", "", "body")
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "subject")
	assert.Equal(t, 0, countRows(t, db, "messages"))
}

func TestInsertMessage_TimestampsStrictlyIncrease(t *testing.T) {
	db := createTestDatabase(t)
	ctx := context.Background()

	// a stalled wall clock must not produce equal timestamps
	db.stamps = newStampClock(fixedClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)})

	for i := 0; i < 5; i++ {
		_, err := db.InsertMessage(ctx, "n", "e@example.com", "s", "m")
		require.NoError(t, err)
	}

	msgs, err := db.ListMessages(ctx, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 5)

	// newest first
	for i := 1; i < len(msgs); i++ {
		assert.True(t, msgs[i-1].CreatedAt.After(msgs[i].CreatedAt),
			"message %d (%v) not after message %d (%v)", msgs[i-1].ID, msgs[i-1].CreatedAt, msgs[i].ID, msgs[i].CreatedAt)
		assert.Greater(t, msgs[i-1].ID, msgs[i].ID)
	}
}

func TestInsertMessage_Concurrent(t *testing.T) {
	db := createTestDatabase(t)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := db.InsertMessage(ctx, "n", "e@example.com", "s", "m")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	msgs, err := db.ListMessages(ctx, 0)
	require.NoError(t, err)
	require.Len(t, msgs, workers)
	seen := make(map[time.Time]bool)
	for _, m := range msgs {
		assert.False(t, seen[m.CreatedAt], "duplicate timestamp %v", m.CreatedAt)
		seen[m.CreatedAt] = true
	}
}

func TestListMessages_Limit(t *testing.T) {
	db := createTestDatabase(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := db.InsertMessage(ctx, "n", "e@example.com", "s", "m")
		require.NoError(t, err)
	}

	msgs, err := db.ListMessages(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, msgs, 2)
}

func TestStampClock(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("stalled clock", func(t *testing.T) {
		s := newStampClock(fixedClock{t: base})
		first := s.Next()
		second := s.Next()
		assert.Equal(t, base, first)
		assert.Equal(t, base.Add(time.Microsecond), second)
	})

	t.Run("clock steps backwards", func(t *testing.T) {
		s := newStampClock(fixedClock{t: base})
		first := s.Next()
		s.clock = fixedClock{t: base.Add(-time.Hour)}
		assert.True(t, s.Next().After(first))
	})

	t.Run("sub-microsecond input is truncated", func(t *testing.T) {
		s := newStampClock(fixedClock{t: base.Add(999 * time.Nanosecond)})
		assert.Equal(t, base, s.Next())
	})

	t.Run("result is UTC", func(t *testing.T) {
		loc := time.FixedZone("BRT", -3*60*60)
		s := newStampClock(fixedClock{t: base.In(loc)})
		assert.Equal(t, time.UTC, s.Next().Location())
	})
}
