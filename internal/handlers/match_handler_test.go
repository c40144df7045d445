package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/internmatch/matcher/internal/models"
	"github.com/internmatch/matcher/internal/services"
)

type stubMatching struct {
	report  *services.GenerationReport
	bulk    *services.BulkReport
	matches []models.Match
	deleted int64
	err     error
}

func (s *stubMatching) Generate(context.Context, uuid.UUID) (*services.GenerationReport, error) {
	return s.report, s.err
}
func (s *stubMatching) GenerateAll(context.Context) (*services.BulkReport, error) {
	return s.bulk, s.err
}
func (s *stubMatching) Clear(context.Context, uuid.UUID) (int64, error) { return s.deleted, s.err }
func (s *stubMatching) Regenerate(context.Context, uuid.UUID) (*services.GenerationReport, error) {
	return s.report, s.err
}
func (s *stubMatching) ListMatches(context.Context, uuid.UUID) ([]models.Match, error) {
	return s.matches, s.err
}
func (s *stubMatching) GenerateMatchesForStudent(context.Context, uuid.UUID) []models.Match {
	return s.matches
}
func (s *stubMatching) GenerateAllMatches(context.Context) int            { return 0 }
func (s *stubMatching) ClearMatchesForStudent(context.Context, uuid.UUID) {}

type stubWorker struct {
	accept   bool
	enqueued []uuid.UUID
}

func (w *stubWorker) Start(context.Context) {}
func (w *stubWorker) Stop()                 {}
func (w *stubWorker) EnqueueRegeneration(id uuid.UUID) bool {
	w.enqueued = append(w.enqueued, id)
	return w.accept
}

func newTestApp(matching services.MatchingService, worker services.Worker) *fiber.App {
	app := fiber.New()
	NewMatchHandler(matching, worker).Register(app.Group("/api/v1"))
	return app
}

func TestHandleGenerate(t *testing.T) {
	studentID := uuid.New()
	matching := &stubMatching{report: &services.GenerationReport{StudentID: studentID, Created: 2}}
	app := newTestApp(matching, &stubWorker{})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/students/"+studentID.String()+"/matches", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body services.GenerationReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 2, body.Created)
}

func TestHandleGenerateErrors(t *testing.T) {
	cases := []struct {
		name string
		path string
		err  error
		want int
	}{
		{"bad id", "/api/v1/students/not-a-uuid/matches", nil, fiber.StatusBadRequest},
		{"unknown student", "/api/v1/students/" + uuid.NewString() + "/matches", services.ErrStudentNotFound, fiber.StatusNotFound},
		{"storage failure", "/api/v1/students/" + uuid.NewString() + "/matches", errors.New("db down"), fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(&stubMatching{err: tc.err}, &stubWorker{})
			resp, err := app.Test(httptest.NewRequest(http.MethodPost, tc.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func TestHandleListAndClear(t *testing.T) {
	studentID := uuid.New()
	matching := &stubMatching{
		matches: []models.Match{{StudentID: studentID, OverallScore: 0.7}},
		deleted: 3,
	}
	app := newTestApp(matching, &stubWorker{})
	path := "/api/v1/students/" + studentID.String() + "/matches"

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var list models.MatchListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Equal(t, 1, list.Count)

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, path, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var cleared models.ClearResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cleared))
	assert.Equal(t, int64(3), cleared.Deleted)
}

func TestHandleRegenerate(t *testing.T) {
	studentID := uuid.New()
	worker := &stubWorker{accept: true}
	app := newTestApp(&stubMatching{}, worker)
	path := "/api/v1/students/" + studentID.String() + "/matches/regenerate"

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, path, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
	assert.Equal(t, []uuid.UUID{studentID}, worker.enqueued)

	worker.accept = false
	resp, err = app.Test(httptest.NewRequest(http.MethodPost, path, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestHandleGenerateAll(t *testing.T) {
	matching := &stubMatching{bulk: &services.BulkReport{Students: 4, Matches: 9, Failed: []uuid.UUID{}}}
	app := newTestApp(matching, &stubWorker{})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/matches/generate", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body services.BulkReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 9, body.Matches)
}
