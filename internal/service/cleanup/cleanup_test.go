package cleanup

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockCleanupStorage struct {
	mock.Mock
	order []string
}

func (m *MockCleanupStorage) HardDeleteLogsOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	m.order = append(m.order, "logs")
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCleanupStorage) DeleteOrphanReferences(ctx context.Context, cutoff time.Time) (int64, error) {
	m.order = append(m.order, "references")
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCleanupStorage) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	m.order = append(m.order, "sessions")
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func TestPurgeOnce_RunsLogsBeforeReferences(t *testing.T) {
	store := new(MockCleanupStorage)
	store.On("HardDeleteLogsOlderThan", mock.Anything, mock.Anything).Return(int64(3), nil)
	store.On("DeleteOrphanReferences", mock.Anything, mock.Anything).Return(int64(2), nil)
	store.On("DeleteExpiredSessions", mock.Anything).Return(int64(1), nil)

	runner := New(slog.Default(), store, 30*24*time.Hour, time.Hour)

	assert.NoError(t, runner.PurgeOnce(context.Background()))
	assert.Equal(t, []string{"logs", "references", "sessions"}, store.order)
	store.AssertExpectations(t)
}

func TestPurgeOnce_CutoffUsesRetention(t *testing.T) {
	store := new(MockCleanupStorage)
	retention := 30 * 24 * time.Hour

	store.On("HardDeleteLogsOlderThan", mock.Anything, mock.MatchedBy(func(cutoff time.Time) bool {
		want := time.Now().Add(-retention)
		return cutoff.Sub(want).Abs() < time.Minute
	})).Return(int64(0), nil)
	store.On("DeleteOrphanReferences", mock.Anything, mock.Anything).Return(int64(0), nil)
	store.On("DeleteExpiredSessions", mock.Anything).Return(int64(0), nil)

	runner := New(slog.Default(), store, retention, time.Hour)
	assert.NoError(t, runner.PurgeOnce(context.Background()))
	store.AssertExpectations(t)
}

func TestPurgeOnce_StopsOnFirstError(t *testing.T) {
	store := new(MockCleanupStorage)
	store.On("HardDeleteLogsOlderThan", mock.Anything, mock.Anything).Return(int64(0), errors.New("lock timeout"))

	runner := New(slog.Default(), store, time.Hour, time.Hour)

	assert.Error(t, runner.PurgeOnce(context.Background()))
	store.AssertNotCalled(t, "DeleteOrphanReferences", mock.Anything, mock.Anything)
}
