package update

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"extrud-backend/internal/middleware/session"
	"extrud-backend/internal/storage"
)

type MockLogUpdater struct {
	mock.Mock
}

func (m *MockLogUpdater) UpdateLog(ctx context.Context, id int64, caller storage.Account, v storage.LogValues) error {
	args := m.Called(ctx, id, caller, v)
	return args.Error(0)
}

func patchRequest(t *testing.T, handler http.HandlerFunc, acc storage.Account, body string) *httptest.ResponseRecorder {
	t.Helper()

	router := chi.NewRouter()
	router.Patch("/api/logs/{id}", handler)

	req := httptest.NewRequest(http.MethodPatch, "/api/logs/42", strings.NewReader(body))
	req = req.WithContext(session.WithAccount(req.Context(), acc))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestUpdateLog_SingleField(t *testing.T) {
	updater := new(MockLogUpdater)
	creator := storage.Account{ID: 7, Role: storage.RoleTeam}

	updater.On("UpdateLog", mock.Anything, int64(42), creator, mock.MatchedBy(func(v storage.LogValues) bool {
		// only the edited field is present in a cell edit
		return v.Remark != nil && *v.Remark == "surface scratch" && v.DieCode == nil
	})).Return(nil)

	rr := patchRequest(t, UpdateLog(slog.Default(), updater), creator, `{"remark":"surface scratch"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	updater.AssertExpectations(t)
}

func TestUpdateLog_ForeignRecordForbidden(t *testing.T) {
	updater := new(MockLogUpdater)
	other := storage.Account{ID: 8, Role: storage.RoleTeam}
	updater.On("UpdateLog", mock.Anything, int64(42), other, mock.Anything).Return(storage.ErrForbidden)

	rr := patchRequest(t, UpdateLog(slog.Default(), updater), other, `{"remark":"x"}`)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "message")
}

func TestUpdateLog_NotFound(t *testing.T) {
	updater := new(MockLogUpdater)
	updater.On("UpdateLog", mock.Anything, int64(42), mock.Anything, mock.Anything).Return(storage.ErrNotFound)

	rr := patchRequest(t, UpdateLog(slog.Default(), updater), storage.Account{ID: 7, Role: storage.RoleTeam}, `{}`)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUpdateLog_InvalidJSON(t *testing.T) {
	updater := new(MockLogUpdater)

	rr := patchRequest(t, UpdateLog(slog.Default(), updater), storage.Account{ID: 7}, `{"ngQuantity":"three"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	updater.AssertNotCalled(t, "UpdateLog", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
