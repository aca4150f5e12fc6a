package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-lifecycle.com/task-lifecycle/internal/cache"
	config "task-lifecycle.com/task-lifecycle/internal/configs"
	"task-lifecycle.com/task-lifecycle/internal/constants"
	model "task-lifecycle.com/task-lifecycle/internal/models"
	"task-lifecycle.com/task-lifecycle/internal/services"
)

type testServer struct {
	e *echo.Echo
}

func setupServer(t *testing.T) *testServer {
	t.Helper()

	db, err := config.NewDatabase("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	reg := prometheus.NewRegistry()
	pipeline := services.NewPipeline(db, cache.NewMemoryTemplateCache(time.Minute), nil, services.NewMetrics(reg), zerolog.Nop())

	ctx := context.Background()
	for _, m := range []model.DomainMembership{
		{UserID: "admin", DomainID: "d1", Role: constants.RoleAdmin},
		{UserID: "u1", DomainID: "d1", Role: constants.RoleMember},
	} {
		m := m
		require.NoError(t, pipeline.Memberships.Upsert(ctx, &m))
	}

	e := echo.New()
	Register(e, NewHandler(pipeline, []string{"root"}, zerolog.Nop()), 1000, reg, zerolog.Nop())
	return &testServer{e: e}
}

func (s *testServer) do(t *testing.T, method, path, userID, body string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec.Code, out
}

const sopTemplateJSON = `{
	"key": "t-sop-1",
	"name": "Verify ID",
	"execution_model": "sop",
	"standard_operating_procedure": "Compare the photo.",
	"is_active": true
}`

func TestHandler_Lifecycle(t *testing.T) {
	s := setupServer(t)

	code, _ := s.do(t, http.MethodPut, "/templates", "u1", sopTemplateJSON)
	assert.Equal(t, http.StatusForbidden, code)

	code, tmpl := s.do(t, http.MethodPut, "/templates", "root", sopTemplateJSON)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "t-sop-1", tmpl["key"])

	code, dt := s.do(t, http.MethodPost, "/domains/d1/adoptions", "admin", `{"template_id":"t-sop-1"}`)
	require.Equal(t, http.StatusOK, code)
	dtID := dt["id"].(string)

	code, again := s.do(t, http.MethodPost, "/domains/d1/adoptions", "admin", `{"template_id":"t-sop-1"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, dtID, again["id"])

	code, ut := s.do(t, http.MethodPost, "/domains/d1/tasks/"+dtID+"/assignments", "admin", `{"user_id":"u1"}`)
	require.Equal(t, http.StatusOK, code)
	utID := ut["id"].(string)
	assert.Equal(t, "Verify ID", ut["task_snapshot"].(map[string]any)["title"])

	code, _ = s.do(t, http.MethodPost, "/domains/d1/tasks/"+dtID+"/assignments", "admin", `{"user_id":"u2"}`)
	assert.Equal(t, http.StatusForbidden, code)

	code, list := s.do(t, http.MethodGet, "/user-tasks", "u1", "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, list["count"])

	code, ex := s.do(t, http.MethodPost, "/executions", "u1", `{"user_task_id":"`+utID+`"}`)
	require.Equal(t, http.StatusCreated, code)
	exID := ex["execution_id"].(string)
	assert.Equal(t, "assigned", ex["status"])

	code, _ = s.do(t, http.MethodPost, "/executions/"+exID+"/complete", "u1", `{"outcome":"completed"}`)
	assert.Equal(t, http.StatusConflict, code)

	code, msg := s.do(t, http.MethodPost, "/executions/"+exID+"/messages", "u1", `{"role":"user","content":"hi"}`)
	require.Equal(t, http.StatusCreated, code)
	msgID := msg["id"].(string)

	code, ex = s.do(t, http.MethodGet, "/executions/"+exID, "u1", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "in_progress", ex["status"])

	code, _ = s.do(t, http.MethodGet, "/executions/"+exID, "u2", "")
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(t, http.MethodPut, "/messages/"+msgID+"/feedback", "u1", `{"rating":"sideways"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodPut, "/messages/"+msgID+"/feedback", "u1", `{"rating":"up"}`)
	assert.Equal(t, http.StatusOK, code)

	code, msgs := s.do(t, http.MethodGet, "/executions/"+exID+"/messages?limit=10", "u1", "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, msgs["count"])

	code, _ = s.do(t, http.MethodGet, "/executions/"+exID+"/messages?limit=abc", "u1", "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, ex = s.do(t, http.MethodPost, "/executions/"+exID+"/complete", "u1", `{"outcome":"completed"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "completed", ex["status"])

	code, _ = s.do(t, http.MethodPost, "/executions/"+exID+"/messages", "u1", `{"role":"user","content":"late"}`)
	assert.Equal(t, http.StatusConflict, code)

	code, done := s.do(t, http.MethodPost, "/user-tasks/"+utID+"/complete", "u1", `{"completion_data":{"result":"verified"}}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, done["is_completed"])

	code, _ = s.do(t, http.MethodPost, "/user-tasks/"+utID+"/complete", "u2", `{}`)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(t, http.MethodDelete, "/executions/"+exID, "u1", "")
	assert.Equal(t, http.StatusNoContent, code)

	code, _ = s.do(t, http.MethodGet, "/executions/"+exID, "u1", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestHandler_RequiresIdentity(t *testing.T) {
	s := setupServer(t)

	code, _ := s.do(t, http.MethodGet, "/templates", "", "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, code)
}

func TestHandler_BadRequests(t *testing.T) {
	s := setupServer(t)

	code, _ := s.do(t, http.MethodPost, "/domains/d1/adoptions", "admin", `{`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodPost, "/domains/d1/adoptions", "admin", `{"template_id":""}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodPost, "/domains/d1/adoptions", "admin", `{"template_id":"nope"}`)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(t, http.MethodGet, "/domains/d1/tasks?include_inactive=maybe", "admin", "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodPost, "/executions", "u1", `{}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestHandler_Metrics(t *testing.T) {
	s := setupServer(t)

	_, _ = s.do(t, http.MethodPut, "/templates", "root", sopTemplateJSON)
	code, _ := s.do(t, http.MethodPost, "/domains/d1/adoptions", "admin", `{"template_id":"t-sop-1"}`)
	require.Equal(t, http.StatusOK, code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `task_lifecycle_adoptions_total{result="created"} 1`)
}

func TestHandler_TemplateEditKeepsItAdoptable(t *testing.T) {
	s := setupServer(t)

	code, created := s.do(t, http.MethodPut, "/templates", "root", sopTemplateJSON)
	require.Equal(t, http.StatusOK, code)

	code, edited := s.do(t, http.MethodPut, "/templates", "root", `{"key":"t-sop-1","name":"Verify ID v2","execution_model":"sop"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, created["id"], edited["id"])
	assert.Equal(t, true, edited["is_active"])

	code, dt := s.do(t, http.MethodPost, "/domains/d1/adoptions", "admin", `{"template_id":"t-sop-1"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Verify ID v2", dt["snapshot"].(map[string]any)["title"])

	code, fresh := s.do(t, http.MethodPut, "/templates", "root", `{"id":"x","key":"t-new","name":"New","execution_model":"sop"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, fresh["is_active"])
	assert.NotEqual(t, "x", fresh["id"])

	code, other := s.do(t, http.MethodPut, "/templates", "root", `{"id":"`+fresh["id"].(string)+`","key":"t-other","name":"Other","execution_model":"sop"}`)
	require.Equal(t, http.StatusOK, code)
	assert.NotEqual(t, fresh["id"], other["id"])

	code, _ = s.do(t, http.MethodGet, "/domains/d1/adoptable-templates", "u2", "")
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(t, http.MethodGet, "/domains/d1/tasks", "u2", "")
	assert.Equal(t, http.StatusForbidden, code)

	code, tasks := s.do(t, http.MethodGet, "/domains/d1/tasks", "u1", "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, tasks["count"])
}
