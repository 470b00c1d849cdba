package infrastructure

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"career-coach/domain"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestMemorySessionStore_CreateAndGet(t *testing.T) {
	store := NewMemorySessionStore(10, time.Hour, quietLogger())

	s, err := store.Create(domain.SessionParams{Role: "Backend Engineer", Type: "technical"})
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, domain.DifficultyMedium, s.Difficulty)

	got, err := store.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, 1, store.Len())
}

func TestMemorySessionStore_IDsAreUnique(t *testing.T) {
	store := NewMemorySessionStore(100, time.Hour, quietLogger())
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		s, err := store.Create(domain.SessionParams{Role: "r"})
		require.NoError(t, err)
		assert.False(t, seen[s.ID])
		seen[s.ID] = true
	}
}

func TestMemorySessionStore_UnknownSession(t *testing.T) {
	store := NewMemorySessionStore(10, time.Hour, quietLogger())

	_, err := store.Get("nope")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.ErrorIs(t, store.AppendQuestion("nope", 1, "q"), domain.ErrSessionNotFound)
	assert.ErrorIs(t, store.AppendAnswer("nope", 1, domain.AnswerRecord{}), domain.ErrSessionNotFound)
	assert.False(t, store.Evict("nope"))
}

func TestMemorySessionStore_AppendKeepsOrder(t *testing.T) {
	store := NewMemorySessionStore(10, time.Hour, quietLogger())
	s, err := store.Create(domain.SessionParams{Role: "r"})
	require.NoError(t, err)

	require.NoError(t, store.AppendQuestion(s.ID, 1, "q1"))
	assert.ErrorIs(t, store.AppendQuestion(s.ID, 1, "again"), domain.ErrSlotConflict)
	require.NoError(t, store.AppendAnswer(s.ID, 1, domain.AnswerRecord{Question: "q1", Answer: "a1", Score: 7}))
	assert.ErrorIs(t, store.AppendAnswer(s.ID, 1, domain.AnswerRecord{}), domain.ErrSlotConflict)

	var verr *domain.ValidationError
	assert.ErrorAs(t, store.AppendAnswer(s.ID, 2, domain.AnswerRecord{}), &verr)

	snap := s.Snapshot()
	assert.Equal(t, []string{"q1"}, snap.Questions)
	require.Len(t, snap.Answers, 1)
	assert.Equal(t, "a1", snap.Answers[0].Answer)
}

func TestMemorySessionStore_Evict(t *testing.T) {
	store := NewMemorySessionStore(10, time.Hour, quietLogger())
	s, err := store.Create(domain.SessionParams{Role: "r"})
	require.NoError(t, err)

	assert.True(t, store.Evict(s.ID))
	assert.False(t, store.Evict(s.ID))
	_, err = store.Get(s.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestMemorySessionStore_CapacityBound(t *testing.T) {
	store := NewMemorySessionStore(2, time.Hour, quietLogger())
	first, err := store.Create(domain.SessionParams{Role: "r"})
	require.NoError(t, err)
	_, err = store.Create(domain.SessionParams{Role: "r"})
	require.NoError(t, err)
	_, err = store.Create(domain.SessionParams{Role: "r"})
	require.NoError(t, err)

	assert.Equal(t, 2, store.Len())
	_, err = store.Get(first.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestMemorySessionStore_IdleExpiry(t *testing.T) {
	store := NewMemorySessionStore(10, 50*time.Millisecond, quietLogger())
	s, err := store.Create(domain.SessionParams{Role: "r"})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		_, err := store.Get(s.ID)
		return err != nil
	}, 2*time.Second, 20*time.Millisecond)
}
