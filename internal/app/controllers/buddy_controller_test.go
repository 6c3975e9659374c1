package controllers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yigit/campusbuddy/internal/app/controllers"
	"github.com/yigit/campusbuddy/internal/app/matching"
	"github.com/yigit/campusbuddy/internal/app/models"
	"github.com/yigit/campusbuddy/internal/app/routes"
	"github.com/yigit/campusbuddy/internal/pkg/apperrors"
)

type stubService struct {
	lastUser   string
	lastRole   models.OptInRole
	lastStatus models.MeetingStatus
	lastCampus string
	details    *models.MatchDetails
	result     *matching.Result
	err        error
}

func (s *stubService) OptIn(ctx context.Context, userID string, role models.OptInRole) (*models.OptIn, error) {
	s.lastUser, s.lastRole = userID, role
	if s.err != nil {
		return nil, s.err
	}
	return &models.OptIn{ID: uuid.NewString(), UserID: userID, Role: role, Active: true}, nil
}

func (s *stubService) OptOut(ctx context.Context, userID string, role models.OptInRole) (*models.OptIn, error) {
	s.lastUser, s.lastRole = userID, role
	if s.err != nil {
		return nil, s.err
	}
	return &models.OptIn{UserID: userID, Role: role}, nil
}

func (s *stubService) GetCurrentMatch(ctx context.Context, userID string) (*models.MatchDetails, error) {
	s.lastUser = userID
	return s.details, s.err
}

func (s *stubService) CreateMeeting(ctx context.Context, userID, matchID string, plannedTime time.Time) (*models.Meeting, error) {
	s.lastUser = userID
	if s.err != nil {
		return nil, s.err
	}
	return &models.Meeting{ID: uuid.NewString(), MatchID: matchID, PlannedTime: plannedTime, Status: models.MeetingScheduled}, nil
}

func (s *stubService) UpdateMeetingStatus(ctx context.Context, userID, meetingID string, status models.MeetingStatus) (*models.Meeting, error) {
	s.lastUser, s.lastStatus = userID, status
	if s.err != nil {
		return nil, s.err
	}
	return &models.Meeting{ID: meetingID, Status: status}, nil
}

func (s *stubService) ListMeetings(ctx context.Context, userID, matchID string) ([]*models.Meeting, error) {
	return []*models.Meeting{}, s.err
}

func (s *stubService) RunMatching(ctx context.Context, campus string) (*matching.Result, error) {
	s.lastCampus = campus
	return s.result, s.err
}

func newRouter(svc *stubService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	routes.SetupRouter(router, controllers.NewBuddyController(svc), nil, routes.Options{})
	return router
}

func do(router http.Handler, method, path, user, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON %q: %v", w.Body.String(), err)
	}
	return body
}

func TestOptIn_PassesCallerAndRole(t *testing.T) {
	svc := &stubService{}
	user := uuid.NewString()

	w := do(newRouter(svc), http.MethodPost, "/api/v1/buddy/optin", user, `{"type":"BUDDY"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if svc.lastUser != user || svc.lastRole != models.RoleBuddy {
		t.Errorf("service got user %q role %q", svc.lastUser, svc.lastRole)
	}
	if body := decode(t, w); body["success"] != true {
		t.Errorf("body = %v", body)
	}
}

func TestBuddyRoutes_RequireCallerIdentity(t *testing.T) {
	router := newRouter(&stubService{})

	for _, user := range []string{"", "not-a-uuid"} {
		w := do(router, http.MethodGet, "/api/v1/buddy/match", user, "")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("user %q: status = %d, want 401", user, w.Code)
		}
	}
}

func TestOptIn_RejectsUnknownRole(t *testing.T) {
	svc := &stubService{}
	w := do(newRouter(svc), http.MethodPost, "/api/v1/buddy/optin", uuid.NewString(), `{"type":"STAFF"}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if svc.lastUser != "" {
		t.Error("service called for an invalid body")
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", apperrors.NewInvalidInputError("bad"), http.StatusBadRequest},
		{"not found", apperrors.ErrOptInNotFound, http.StatusNotFound},
		{"not authorized", apperrors.NewNotAuthorizedError("no"), http.StatusForbidden},
		{"unavailable", apperrors.NewUnavailableError("store", errors.New("down")), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(newRouter(&stubService{err: tt.err}), http.MethodPost, "/api/v1/buddy/optout", uuid.NewString(), `{"type":"MENTEE"}`)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
			body := decode(t, w)
			if body["success"] != false || body["error"] == nil {
				t.Errorf("body = %v", body)
			}
		})
	}
}

func TestGetCurrentMatch_NoMatchReturnsNullData(t *testing.T) {
	w := do(newRouter(&stubService{}), http.MethodGet, "/api/v1/buddy/match", uuid.NewString(), "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := decode(t, w)
	if data, ok := body["data"]; !ok || data != nil {
		t.Errorf("data = %v, want null", body["data"])
	}
}

func TestCreateMeeting(t *testing.T) {
	svc := &stubService{}
	matchID := uuid.NewString()
	path := "/api/v1/buddy/match/" + matchID + "/meeting"

	w := do(newRouter(svc), http.MethodPost, path, uuid.NewString(), `{"plannedTime":"2026-03-02T15:00:00Z"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	data := decode(t, w)["data"].(map[string]interface{})
	if data["matchId"] != matchID || data["status"] != "SCHEDULED" {
		t.Errorf("data = %v", data)
	}

	w = do(newRouter(svc), http.MethodPost, path, uuid.NewString(), `{}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing plannedTime: status = %d, want 400", w.Code)
	}
}

func TestUpdateMeetingStatus(t *testing.T) {
	svc := &stubService{}
	path := "/api/v1/buddy/meeting/" + uuid.NewString() + "/status"

	w := do(newRouter(svc), http.MethodPost, path, uuid.NewString(), `{"status":"COMPLETED"}`)
	if w.Code != http.StatusOK || svc.lastStatus != models.MeetingCompleted {
		t.Errorf("status = %d, service got %q", w.Code, svc.lastStatus)
	}

	w = do(newRouter(svc), http.MethodPost, path, uuid.NewString(), `{"status":"DONE"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown status: code = %d, want 400", w.Code)
	}
}

func TestRunMatching(t *testing.T) {
	svc := &stubService{result: &matching.Result{
		RunID:        "run-1",
		Campus:       "Main Campus",
		CreatedCount: 1,
		Matches:      []*models.Match{{ID: "m1", MenteeID: "a", BuddyID: "b", Status: models.MatchActive}},
		Unmatched:    []string{},
	}}

	w := do(newRouter(svc), http.MethodPost, "/api/v1/buddy/admin/match?campus=Main+Campus", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if svc.lastCampus != "Main Campus" {
		t.Errorf("campus = %q", svc.lastCampus)
	}
	data := decode(t, w)["data"].(map[string]interface{})
	if data["createdCount"] != float64(1) {
		t.Errorf("createdCount = %v", data["createdCount"])
	}

	w = do(newRouter(&stubService{}), http.MethodPost, "/api/v1/buddy/admin/match", "", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing campus: status = %d, want 400", w.Code)
	}
}

func TestHealth(t *testing.T) {
	w := do(newRouter(&stubService{}), http.MethodGet, "/api/v1/health", "", "")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}

func TestRunMatching_AbortReportsCommittedMatches(t *testing.T) {
	svc := &stubService{
		result: &matching.Result{
			RunID:        "run-2",
			Campus:       "Main Campus",
			CreatedCount: 1,
			Matches:      []*models.Match{{ID: "m1", MenteeID: "a", BuddyID: "b", Status: models.MatchActive}},
			Proposed:     3,
			Unmatched:    []string{},
		},
		err: apperrors.NewUnavailableError("creating match", errors.New("connection reset")),
	}

	w := do(newRouter(svc), http.MethodPost, "/api/v1/buddy/admin/match?campus=Main+Campus", "", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}

	body := decode(t, w)
	errBody, ok := body["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("error = %v", body["error"])
	}
	details, ok := errBody["details"].(map[string]interface{})
	if !ok {
		t.Fatalf("details = %v, want the partial run", errBody["details"])
	}
	if details["createdCount"] != float64(1) || details["runId"] != "run-2" {
		t.Errorf("details = %v", details)
	}
	if matches, _ := details["matches"].([]interface{}); len(matches) != 1 {
		t.Errorf("matches = %v, want 1 entry", details["matches"])
	}
}

func TestRunMatching_FailureWithoutResultHasNoDetails(t *testing.T) {
	svc := &stubService{err: apperrors.NewUnavailableError("loading mentees", errors.New("down"))}

	w := do(newRouter(svc), http.MethodPost, "/api/v1/buddy/admin/match?campus=Main+Campus", "", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	errBody := decode(t, w)["error"].(map[string]interface{})
	if _, ok := errBody["details"]; ok {
		t.Errorf("details = %v, want none", errBody["details"])
	}
}
