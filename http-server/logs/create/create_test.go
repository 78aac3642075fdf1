package create

import (
	"context"
	"errors"
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

type MockLogCreator struct {
	mock.Mock
}

func (m *MockLogCreator) CreateLog(ctx context.Context, caller storage.Account, v storage.LogValues) (int64, error) {
	args := m.Called(ctx, caller, v)
	return args.Get(0).(int64), args.Error(1)
}

func authedRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := session.WithAccount(req.Context(), storage.Account{ID: 7, Role: storage.RoleTeam})
	return req.WithContext(ctx)
}

func TestCreateLog_Success(t *testing.T) {
	creator := new(MockLogCreator)
	creator.On("CreateLog", mock.Anything, mock.MatchedBy(func(acc storage.Account) bool {
		return acc.ID == 7
	}), mock.MatchedBy(func(v storage.LogValues) bool {
		return v.DieCode != nil && *v.DieCode == "D-118"
	})).Return(int64(101), nil)

	handler := CreateLog(slog.Default(), creator)

	body := `{"date":"2025-03-10","dieCode":"D-118","ramSpeed":6.4,"result":"OK"}`
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, authedRequest(http.MethodPost, "/api/logs", body))

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp Response
	assert.NoError(t, render.DecodeJSON(strings.NewReader(rr.Body.String()), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, int64(101), resp.ID)

	creator.AssertExpectations(t)
}

func TestCreateLog_InvalidJSON(t *testing.T) {
	creator := new(MockLogCreator)
	handler := CreateLog(slog.Default(), creator)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, authedRequest(http.MethodPost, "/api/logs", `{"ramSpeed":"fast"}`))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	creator.AssertNotCalled(t, "CreateLog", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateLog_NoSession(t *testing.T) {
	handler := CreateLog(slog.Default(), new(MockLogCreator))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/logs", strings.NewReader("{}")))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCreateLog_StorageError(t *testing.T) {
	creator := new(MockLogCreator)
	creator.On("CreateLog", mock.Anything, mock.Anything, mock.Anything).
		Return(int64(0), errors.New("db down"))

	handler := CreateLog(slog.Default(), creator)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, authedRequest(http.MethodPost, "/api/logs", `{}`))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	var resp Response
	assert.NoError(t, render.DecodeJSON(strings.NewReader(rr.Body.String()), &resp))
	assert.False(t, resp.OK)
	assert.NotEmpty(t, resp.Message)
}
