package testutil

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	apperrors "media-notes/internal/app/errors"
	"media-notes/internal/app/model"
	"media-notes/internal/app/repository"
)

// MockTranscriptionDAO is an in-memory repository.TranscriptionDAO. Errors
// can be injected per method through ErrorMap.
type MockTranscriptionDAO struct {
	mu sync.RWMutex

	transcriptions map[int64]*model.SavedTranscription
	nextID         int64

	ErrorMap  map[string]error
	CallCount int
}

// NewMockTranscriptionDAO creates a new MockTranscriptionDAO with sensible defaults
func NewMockTranscriptionDAO() *MockTranscriptionDAO {
	return &MockTranscriptionDAO{
		transcriptions: make(map[int64]*model.SavedTranscription),
		nextID:         1,
		ErrorMap:       make(map[string]error),
	}
}

// SimulateOutage makes every method fail with a storage error
func (m *MockTranscriptionDAO) SimulateOutage() *MockTranscriptionDAO {
	m.mu.Lock()
	defer m.mu.Unlock()
	outage := apperrors.NewKind(apperrors.KindStorage, "database is unreachable")
	for _, method := range []string{"SaveTranscription", "ListTranscriptions", "GetTranscription"} {
		m.ErrorMap[method] = outage
	}
	return m
}

func (m *MockTranscriptionDAO) SaveTranscription(ctx context.Context, t *model.SavedTranscription) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount++
	if err, ok := m.ErrorMap["SaveTranscription"]; ok {
		return 0, err
	}
	saved := *t
	saved.ID = m.nextID
	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = time.Now().UTC()
	}
	m.transcriptions[saved.ID] = &saved
	m.nextID++
	return saved.ID, nil
}

func (m *MockTranscriptionDAO) ListTranscriptions(ctx context.Context, accountID int64) ([]model.TranscriptionSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err, ok := m.ErrorMap["ListTranscriptions"]; ok {
		return nil, err
	}
	var out []model.TranscriptionSummary
	for _, t := range m.transcriptions {
		if t.AccountID == accountID {
			out = append(out, model.TranscriptionSummary{ID: t.ID, Title: t.Title, CreatedAt: t.CreatedAt})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *MockTranscriptionDAO) GetTranscription(ctx context.Context, id, accountID int64) (*model.SavedTranscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err, ok := m.ErrorMap["GetTranscription"]; ok {
		return nil, err
	}
	t, ok := m.transcriptions[id]
	if !ok || t.AccountID != accountID {
		return nil, apperrors.NotFound("transcription", strconv.FormatInt(id, 10))
	}
	copied := *t
	return &copied, nil
}

// Saved returns every stored row ordered by id
func (m *MockTranscriptionDAO) Saved() []model.SavedTranscription {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.SavedTranscription, 0, len(m.transcriptions))
	for _, t := range m.transcriptions {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

var _ repository.TranscriptionDAO = (*MockTranscriptionDAO)(nil)
