package get

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"extrud-backend/internal/middleware/session"
	"extrud-backend/internal/storage"
)

type MockLogLister struct {
	mock.Mock
}

func (m *MockLogLister) ListLogs(ctx context.Context, caller storage.Account, filter storage.LogFilter, sort []storage.SortKey, skip int) ([]*storage.ExtrusionLog, error) {
	args := m.Called(ctx, caller, filter, sort, skip)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*storage.ExtrusionLog), args.Error(1)
}

func listRequest(target string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	ctx := session.WithAccount(req.Context(), storage.Account{ID: 3, Role: storage.RoleAdmin})
	return req.WithContext(ctx)
}

func TestListLogs_PassesFiltersAndSort(t *testing.T) {
	lister := new(MockLogLister)

	wantFilter := storage.LogFilter{
		DateFrom:     "2025-03-01",
		DateTo:       "2025-03-31",
		Machine:      "press-3",
		Result:       "NG",
		RemarkSearch: "scratch",
		Deleted:      storage.DeletedBoth,
	}
	wantSort := []storage.SortKey{{ID: "date", Desc: true}, {ID: "startTime"}}

	rec := &storage.ExtrusionLog{ID: 5, CreatedBy: 3}
	lister.On("ListLogs", mock.Anything, mock.Anything, wantFilter, wantSort, 100).
		Return([]*storage.ExtrusionLog{rec}, nil)

	handler := ListLogs(slog.Default(), lister)

	target := `/api/logs?dateFrom=2025-03-01&dateTo=2025-03-31&machine=press-3&result=NG&remarkSearch=scratch&deleted=both&skip=100&sort=` +
		`%5B%7B%22id%22%3A%22date%22%2C%22desc%22%3Atrue%7D%2C%7B%22id%22%3A%22startTime%22%7D%5D`
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, listRequest(target))

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp ResponseLogs
	assert.NoError(t, render.DecodeJSON(strings.NewReader(rr.Body.String()), &resp))
	assert.Len(t, resp.Logs, 1)
	assert.Equal(t, int64(5), resp.Logs[0].ID)

	lister.AssertExpectations(t)
}

func TestListLogs_EmptyPage(t *testing.T) {
	lister := new(MockLogLister)
	lister.On("ListLogs", mock.Anything, mock.Anything, mock.Anything, mock.Anything, 0).
		Return([]*storage.ExtrusionLog{}, nil)

	handler := ListLogs(slog.Default(), lister)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, listRequest("/api/logs"))

	assert.Equal(t, http.StatusOK, rr.Code)
	// an empty page must decode as [] rather than null
	assert.Contains(t, rr.Body.String(), `"logs":[]`)
}

func TestListLogs_BadSkip(t *testing.T) {
	handler := ListLogs(slog.Default(), new(MockLogLister))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, listRequest("/api/logs?skip=lots"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListLogs_BadSort(t *testing.T) {
	handler := ListLogs(slog.Default(), new(MockLogLister))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, listRequest("/api/logs?sort=%7Bnot-json"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListLogs_NoSession(t *testing.T) {
	handler := ListLogs(slog.Default(), new(MockLogLister))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/logs", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
