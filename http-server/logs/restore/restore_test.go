package restore

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"extrud-backend/internal/middleware/session"
	"extrud-backend/internal/storage"
)

type MockLogRestorer struct {
	mock.Mock
}

func (m *MockLogRestorer) RestoreLog(ctx context.Context, id int64, caller storage.Account) error {
	args := m.Called(ctx, id, caller)
	return args.Error(0)
}

func restoreRequest(t *testing.T, handler http.HandlerFunc, acc storage.Account, id int64) *httptest.ResponseRecorder {
	t.Helper()

	router := chi.NewRouter()
	router.Post("/api/logs/{id}/restore", handler)

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/logs/%d/restore", id), nil)
	req = req.WithContext(session.WithAccount(req.Context(), acc))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestRestoreLog_SuperAdmin(t *testing.T) {
	restorer := new(MockLogRestorer)
	superAdmin := storage.Account{ID: 1, Role: storage.RoleSuperAdmin}
	restorer.On("RestoreLog", mock.Anything, int64(42), superAdmin).Return(nil)

	rr := restoreRequest(t, RestoreLog(slog.Default(), restorer), superAdmin, 42)

	assert.Equal(t, http.StatusOK, rr.Code)
	restorer.AssertExpectations(t)
}

func TestRestoreLog_NonSuperAdminForbidden(t *testing.T) {
	restorer := new(MockLogRestorer)
	operator := storage.Account{ID: 7, Role: storage.RoleTeam}
	restorer.On("RestoreLog", mock.Anything, int64(42), operator).Return(storage.ErrForbidden)

	rr := restoreRequest(t, RestoreLog(slog.Default(), restorer), operator, 42)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRestoreLog_NotFound(t *testing.T) {
	restorer := new(MockLogRestorer)
	superAdmin := storage.Account{ID: 1, Role: storage.RoleSuperAdmin}
	restorer.On("RestoreLog", mock.Anything, int64(999), superAdmin).Return(storage.ErrNotFound)

	rr := restoreRequest(t, RestoreLog(slog.Default(), restorer), superAdmin, 999)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
