package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/vaughan-dsouza/freelancehub/internal/events"
	"github.com/vaughan-dsouza/freelancehub/internal/models"
	"github.com/vaughan-dsouza/freelancehub/internal/store"
	"github.com/vaughan-dsouza/freelancehub/internal/utils"
)

var projectCols = []string{"id", "title", "client_id", "freelancer_id", "status", "budget", "spend", "deadline", "created_at"}
var userCols = []string{"id", "name", "company", "email", "rate", "role", "created_at"}

type recordedEvent struct {
	key     string
	payload any
}

type fakePublisher struct{ sent []recordedEvent }

func (f *fakePublisher) Publish(_ context.Context, key string, payload any) error {
	f.sent = append(f.sent, recordedEvent{key, payload})
	return nil
}
func (f *fakePublisher) Close() error { return nil }

type fakeLimiter struct {
	allow  bool
	resets int
}

func (f *fakeLimiter) Allow(context.Context, string) (bool, error) { return f.allow, nil }
func (f *fakeLimiter) Reset(context.Context, string) error        { f.resets++; return nil }

func newTestHandler(t *testing.T, d Deps) (*Handler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	d.Store = store.New(sqlx.NewDb(db, "sqlmock"))
	if d.Tokens.AccessSecret == "" {
		d.Tokens = TokenConfig{
			AccessSecret:  "access",
			RefreshSecret: "refresh",
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    time.Hour,
		}
	}
	return NewHandler(d), mock
}

func request(method, target, body string, id int64, role models.Role) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if id != 0 {
		req = req.WithContext(utils.WithIdentity(req.Context(), id, string(role)))
	}
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

func expectProject(mock sqlmock.Sqlmock, id, clientID int64, freelancerID any, status models.ProjectStatus) {
	mock.ExpectQuery(`FROM projects WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(projectCols).
			AddRow(id, "Site rebuild", clientID, freelancerID, string(status), 1000.0, 0.0, nil, time.Now()))
}

func TestTimeLogCreateChargesHoursTimesRate(t *testing.T) {
	pub := &fakePublisher{}
	h, mock := newTestHandler(t, Deps{Events: pub})
	now := time.Now()

	expectProject(mock, 3, 2, int64(9), models.StatusInProgress)
	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(9, "Fay", "", "fay@example.com", 20.0, "freelancer", now))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO time_logs`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(11, now))
	mock.ExpectQuery(`INSERT INTO charges`).
		WithArgs(int64(11), int64(3), int64(2), int64(9), 5.0, 20.0, 100.0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(21, now))
	mock.ExpectExec(`UPDATE projects SET spend`).
		WithArgs(100.0, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`INSERT INTO notifications`).
		WithArgs(int64(2), "New time log", sqlmock.AnyArg(), models.NotifyTimeLog).
		WillReturnRows(sqlmock.NewRows([]string{"id", "is_read", "created_at"}).AddRow(1, false, now))

	rec := httptest.NewRecorder()
	h.TimeLogs.Create(rec, request(http.MethodPost, "/api/timelogs/create",
		`{"project_id":3,"hours_logged":5,"log_date":"2024-03-01","description":"layout"}`, 9, models.RoleFreelancer))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var got timeLogCreated
	decode(t, rec, &got)
	if got.Charge.Amount != 100 || got.Charge.Rate != 20 || got.Charge.TimeLogID != 11 {
		t.Fatalf("charge = %+v", got.Charge)
	}
	if got.TimeLog.Status != models.TimeLogPending {
		t.Fatalf("status = %q", got.TimeLog.Status)
	}
	if len(pub.sent) != 1 || pub.sent[0].key != events.TimeLogCreated {
		t.Fatalf("events = %+v", pub.sent)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestTimeLogCreateRequiresAssignedFreelancer(t *testing.T) {
	h, mock := newTestHandler(t, Deps{})
	expectProject(mock, 3, 2, int64(7), models.StatusInProgress)

	rec := httptest.NewRecorder()
	h.TimeLogs.Create(rec, request(http.MethodPost, "/api/timelogs/create",
		`{"project_id":3,"hours_logged":2}`, 9, models.RoleFreelancer))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestTimeLogCreateRejectsBadHours(t *testing.T) {
	h, _ := newTestHandler(t, Deps{})
	for _, body := range []string{`{"project_id":3,"hours_logged":0}`, `{"project_id":3,"hours_logged":25}`} {
		rec := httptest.NewRecorder()
		h.TimeLogs.Create(rec, request(http.MethodPost, "/", body, 9, models.RoleFreelancer))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d", body, rec.Code)
		}
	}
}

func TestAddSkillTwiceKeepsOneRow(t *testing.T) {
	h, mock := newTestHandler(t, Deps{})

	expectProject(mock, 4, 2, nil, models.StatusOpen)
	mock.ExpectExec(`INSERT INTO project_skills`).
		WithArgs(int64(4), "Go").
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectProject(mock, 4, 2, nil, models.StatusOpen)
	mock.ExpectExec(`INSERT INTO project_skills`).
		WithArgs(int64(4), "Go").
		WillReturnResult(sqlmock.NewResult(0, 0))

	body := `{"project_id":4,"skill_name":"Go"}`

	first := httptest.NewRecorder()
	h.Projects.AddSkill(first, request(http.MethodPost, "/", body, 2, models.RoleClient))
	if first.Code != http.StatusCreated {
		t.Fatalf("first add status = %d", first.Code)
	}

	second := httptest.NewRecorder()
	h.Projects.AddSkill(second, request(http.MethodPost, "/", body, 2, models.RoleClient))
	if second.Code != http.StatusOK {
		t.Fatalf("second add status = %d", second.Code)
	}
	var msg map[string]string
	decode(t, second, &msg)
	if msg["message"] != "Skill already associated with project" {
		t.Fatalf("message = %q", msg["message"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestAddSkillByOtherClientForbidden(t *testing.T) {
	h, mock := newTestHandler(t, Deps{})
	expectProject(mock, 4, 2, nil, models.StatusOpen)

	rec := httptest.NewRecorder()
	h.Projects.AddSkill(rec, request(http.MethodPost, "/", `{"project_id":4,"skill_name":"Go"}`, 5, models.RoleClient))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestMarkReadAll(t *testing.T) {
	h, mock := newTestHandler(t, Deps{})
	mock.ExpectExec(`UPDATE notifications SET is_read = TRUE WHERE user_id = \$1`).
		WithArgs(int64(6)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	rec := httptest.NewRecorder()
	h.Notifications.MarkRead(rec, request(http.MethodPost, "/", "", 6, models.RoleClient))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got struct {
		Updated int64 `json:"updated"`
	}
	decode(t, rec, &got)
	if got.Updated != 3 {
		t.Fatalf("updated = %d", got.Updated)
	}
}

func TestMarkReadOtherUsersNotification(t *testing.T) {
	h, mock := newTestHandler(t, Deps{})
	mock.ExpectExec(`UPDATE notifications SET is_read = TRUE WHERE id = \$1 AND user_id = \$2`).
		WithArgs(int64(40), int64(6)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	rec := httptest.NewRecorder()
	h.Notifications.MarkRead(rec, request(http.MethodPost, "/", `{"notification_id":40}`, 6, models.RoleClient))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestLoginThrottled(t *testing.T) {
	h, mock := newTestHandler(t, Deps{Limiter: &fakeLimiter{allow: false}})

	rec := httptest.NewRecorder()
	h.Auth.Login(rec, request(http.MethodPost, "/", `{"email":"a@b.c","password":"secret1"}`, 0, ""))

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d", rec.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestLoginIssuesTokens(t *testing.T) {
	lim := &fakeLimiter{allow: true}
	h, mock := newTestHandler(t, Deps{Limiter: lim})

	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	mock.ExpectQuery(`FROM users\s+WHERE email = \$1`).
		WithArgs("ann@example.com").
		WillReturnRows(sqlmock.NewRows(append(userCols, "password_hash")).
			AddRow(1, "Ann", "Acme", "ann@example.com", 0.0, "client", time.Now(), string(hash)))
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(int64(1), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := httptest.NewRecorder()
	h.Auth.Login(rec, request(http.MethodPost, "/", `{"email":" Ann@Example.com ","password":"secret1"}`, 0, ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var got tokenResp
	decode(t, rec, &got)
	claims, err := utils.VerifyToken(got.AccessToken, "access")
	if err != nil {
		t.Fatalf("access token: %v", err)
	}
	if claims.ID != 1 || claims.Role != "client" {
		t.Fatalf("claims = %+v", claims)
	}
	if _, err := utils.VerifyToken(got.RefreshToken, "refresh"); err != nil {
		t.Fatalf("refresh token: %v", err)
	}
	if lim.resets != 1 {
		t.Fatalf("limiter resets = %d", lim.resets)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	h, mock := newTestHandler(t, Deps{})
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	mock.ExpectQuery(`WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows(append(userCols, "password_hash")).
			AddRow(1, "Ann", "", "ann@example.com", 0.0, "client", time.Now(), string(hash)))

	rec := httptest.NewRecorder()
	h.Auth.Login(rec, request(http.MethodPost, "/", `{"email":"ann@example.com","password":"nope"}`, 0, ""))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestSignUpRejectsAdminRole(t *testing.T) {
	h, _ := newTestHandler(t, Deps{})
	rec := httptest.NewRecorder()
	h.Auth.SignUp(rec, request(http.MethodPost, "/",
		`{"name":"Eve","email":"eve@example.com","password":"secret1","role":"admin"}`, 0, ""))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestClientSpendScoping(t *testing.T) {
	h, _ := newTestHandler(t, Deps{})

	rec := httptest.NewRecorder()
	h.Reports.ClientSpend(rec, request(http.MethodGet, "/?client_id=8", "", 2, models.RoleClient))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("other client: status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Reports.ClientSpend(rec, request(http.MethodGet, "/", "", 9, models.RoleFreelancer))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("freelancer: status = %d", rec.Code)
	}
}

func TestProjectGetOpenVisibleToFreelancer(t *testing.T) {
	h, mock := newTestHandler(t, Deps{})
	expectProject(mock, 4, 2, nil, models.StatusOpen)

	rec := httptest.NewRecorder()
	h.Projects.Get(rec, request(http.MethodGet, "/?id=4", "", 9, models.RoleFreelancer))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	expectProject(mock, 4, 2, nil, models.StatusInProgress)
	rec = httptest.NewRecorder()
	h.Projects.Get(rec, request(http.MethodGet, "/?id=4", "", 9, models.RoleFreelancer))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("in progress: status = %d", rec.Code)
	}
}
