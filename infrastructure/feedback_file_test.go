package infrastructure

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"career-coach/domain"
)

func TestFileFeedbackRepository_CreatesEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedback.json")

	_, err := NewFileFeedbackRepository(path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestFileFeedbackRepository_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedback.json")
	repo, err := NewFileFeedbackRepository(path)
	require.NoError(t, err)

	require.NoError(t, repo.Save(context.Background(), &domain.Feedback{ID: 1, Message: "first message", Category: "General"}))
	require.NoError(t, repo.Save(context.Background(), &domain.Feedback{ID: 2, Message: "second message", Attachments: []string{"a.png"}}))

	all, err := repo.All()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, int64(1), all[0].ID)
	assert.Equal(t, []string{"a.png"}, all[1].Attachments)
}

func TestFileFeedbackRepository_ConcurrentSaves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedback.json")
	repo, err := NewFileFeedbackRepository(path)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, repo.Save(context.Background(), &domain.Feedback{ID: int64(i), Message: "concurrent entry"}))
		}(i)
	}
	wg.Wait()

	all, err := repo.All()
	require.NoError(t, err)
	assert.Len(t, all, 20)
}

func TestFileFeedbackRepository_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedback.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	repo, err := NewFileFeedbackRepository(path)
	require.NoError(t, err)
	assert.Error(t, repo.Save(context.Background(), &domain.Feedback{Message: "will not be saved"}))
}
