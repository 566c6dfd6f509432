package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eduworld-api/internal/dto"
	"github.com/noah-isme/eduworld-api/internal/handler"
	"github.com/noah-isme/eduworld-api/internal/service"
)

type stubProgressService struct {
	aggregated dto.AggregatedProgressResponse
	detailed   dto.DetailedProgressResponse
	history    []dto.QuizHistoryItem
	update     dto.ProgressUpdateResponse
	err        error

	lastStudent  uint
	lastResource dto.ResourceProgressRequest
	lastQuiz     dto.QuizResultRequest
}

func (s *stubProgressService) GetAggregatedProgress(_ context.Context, studentID uint) (dto.AggregatedProgressResponse, error) {
	s.lastStudent = studentID
	return s.aggregated, s.err
}

func (s *stubProgressService) GetDetailedProgress(_ context.Context, studentID uint) (dto.DetailedProgressResponse, error) {
	s.lastStudent = studentID
	return s.detailed, s.err
}

func (s *stubProgressService) LogResourceProgress(_ context.Context, studentID uint, req dto.ResourceProgressRequest) (dto.ProgressUpdateResponse, error) {
	s.lastStudent = studentID
	s.lastResource = req
	return s.update, s.err
}

func (s *stubProgressService) RecordQuizResult(_ context.Context, studentID uint, req dto.QuizResultRequest) (dto.ProgressUpdateResponse, error) {
	s.lastStudent = studentID
	s.lastQuiz = req
	return s.update, s.err
}

func (s *stubProgressService) GetQuizHistory(_ context.Context, studentID uint) ([]dto.QuizHistoryItem, error) {
	s.lastStudent = studentID
	return s.history, s.err
}

var _ service.ProgressService = (*stubProgressService)(nil)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Details json.RawMessage `json:"details"`
}

func identity(userID uint, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if userID != 0 {
			c.Locals("user_id", userID)
			c.Locals("user_role", role)
		}
		return c.Next()
	}
}

func newProgressApp(svc service.ProgressService, userID uint) *fiber.App {
	app := fiber.New()
	h := handler.NewProgressHandler(svc, zerolog.Nop())
	h.RegisterStudent(app.Group("/api/student", identity(userID, "student")), nil)
	h.RegisterAdmin(app.Group("/api/admin", identity(1, "admin")))
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (*http.Response, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	resp.Body.Close()
	return resp, env
}

func TestProgressHandlerServesCallerProgress(t *testing.T) {
	svc := &stubProgressService{aggregated: dto.AggregatedProgressResponse{OverallPercent: 67, TotalItems: 3, CompletedItems: 2}}
	app := newProgressApp(svc, 21)

	resp, env := doJSON(t, app, http.MethodGet, "/api/student/progress", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.True(t, env.Success)
	require.Equal(t, uint(21), svc.lastStudent)

	var data dto.AggregatedProgressResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Equal(t, 67, data.OverallPercent)
}

func TestProgressHandlerRequiresIdentity(t *testing.T) {
	app := newProgressApp(&stubProgressService{}, 0)

	resp, env := doJSON(t, app, http.MethodGet, "/api/student/progress", nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	require.False(t, env.Success)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/student/resource-progress", dto.ResourceProgressRequest{UnitID: 1, ResourceType: "video", ResourceURL: "/a.mp4"})
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestProgressHandlerAdminViewsTargetStudent(t *testing.T) {
	svc := &stubProgressService{}
	app := newProgressApp(svc, 21)

	resp, _ := doJSON(t, app, http.MethodGet, "/api/admin/students/9/progress-detailed", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, uint(9), svc.lastStudent)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/admin/students/abc/quiz-history", nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestProgressHandlerLogsResource(t *testing.T) {
	percent := 50
	svc := &stubProgressService{update: dto.ProgressUpdateResponse{OverallPercent: &percent}}
	app := newProgressApp(svc, 21)

	resp, env := doJSON(t, app, http.MethodPost, "/api/student/resource-progress", fiber.Map{
		"unit_id":       3,
		"resource_type": "pdf",
		"resource_url":  "http://cdn.example.com/uploads/notes.pdf",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, uint(3), svc.lastResource.UnitID)
	require.Equal(t, "pdf", svc.lastResource.ResourceType)
	require.JSONEq(t, `{"overall_percent":50}`, string(env.Data))
}

func TestProgressHandlerOmitsPercentWhenRecomputeFailed(t *testing.T) {
	app := newProgressApp(&stubProgressService{}, 21)

	resp, env := doJSON(t, app, http.MethodPost, "/api/student/quiz-progress", fiber.Map{"quiz_id": 4, "score": 80})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.True(t, env.Success)
	require.JSONEq(t, `{}`, string(env.Data))
}

func TestProgressHandlerMapsErrors(t *testing.T) {
	validationErr := validator.New().Struct(dto.ResourceProgressRequest{})
	require.Error(t, validationErr)

	cases := []struct {
		err    error
		status int
	}{
		{service.ErrStudentNotFound, fiber.StatusNotFound},
		{service.ErrUnitNotFound, fiber.StatusNotFound},
		{service.ErrInvalidResourceType, fiber.StatusBadRequest},
		{validationErr, fiber.StatusBadRequest},
		{fmt.Errorf("connection reset"), fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		app := newProgressApp(&stubProgressService{err: tc.err}, 21)
		resp, env := doJSON(t, app, http.MethodPost, "/api/student/resource-progress", fiber.Map{"unit_id": 1})
		require.Equal(t, tc.status, resp.StatusCode, tc.err.Error())
		require.False(t, env.Success)
		if tc.status == fiber.StatusInternalServerError {
			require.NotContains(t, env.Message, "connection reset")
		}
	}
}

func TestProgressHandlerRejectsMalformedBody(t *testing.T) {
	app := newProgressApp(&stubProgressService{}, 21)

	req := httptest.NewRequest(http.MethodPost, "/api/student/quiz-progress", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
