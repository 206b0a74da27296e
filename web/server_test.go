// ABOUTME: Tests for the HTTP API and dashboard
// ABOUTME: Exercises auth, role gates, logging communications, and report export
package web

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/commtrack/auth"
	"github.com/harperreed/commtrack/db"
	"github.com/harperreed/commtrack/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var today = time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	db      *sql.DB
	handler http.Handler
	late    *models.Company
	due     *models.Company
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	database, err := db.OpenDatabase()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	late := &models.Company{Name: "Late Co", Location: "Chicago, IL", Periodicity: 7}
	due := &models.Company{Name: "Due Co", Periodicity: 14}
	require.NoError(t, db.CreateCompany(database, late))
	require.NoError(t, db.CreateCompany(database, due))
	require.NoError(t, db.ReplaceMethods(database, []models.CommunicationMethod{{Name: "Email"}, {Name: "Phone Call"}}))
	for _, c := range []models.Communication{
		{CompanyID: late.ID, Type: models.CommunicationEmail, Date: today.AddDate(0, 0, -10), Notes: "sent deck, asked for feedback"},
		{CompanyID: due.ID, Type: models.CommunicationPhoneCall, Date: today.AddDate(0, 0, -14)},
	} {
		c := c
		require.NoError(t, db.LogCommunication(database, &c))
	}

	directory, err := auth.NewDirectory()
	require.NoError(t, err)
	srv, err := NewServer(database, Options{
		Tokens:    auth.NewTokenAuth("test-secret", time.Hour),
		Directory: directory,
		Now:       func() time.Time { return today },
	})
	require.NoError(t, err)

	return &testEnv{db: database, handler: srv.Router(), late: late, due: due}
}

func (e *testEnv) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/v1/auth/login", "", `{"email":"`+email+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Data loginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	resp := struct {
		Success bool        `json:"success"`
		Data    interface{} `json:"data"`
	}{Data: v}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success, rec.Body.String())
}

func TestLoginRejectsBadPassword(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/v1/auth/login", "", `{"email":"admin@example.com","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestAPIRequiresToken(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/v1/companies", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListCompaniesWithStatus(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "user@example.com", "user")

	rec := env.do(t, http.MethodGet, "/api/v1/companies", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var statuses []models.CompanyStatus
	decodeData(t, rec, &statuses)
	require.Len(t, statuses, 2)
	assert.Equal(t, models.StatusOverdue, statuses[0].Status)
	assert.Equal(t, models.StatusDue, statuses[1].Status)

	rec = env.do(t, http.MethodGet, "/api/v1/companies?status=due", token, "")
	statuses = nil
	decodeData(t, rec, &statuses)
	require.Len(t, statuses, 1)
	assert.Equal(t, "Due Co", statuses[0].Name)
}

func TestGetCompanyDetail(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "user@example.com", "user")

	rec := env.do(t, http.MethodGet, "/api/v1/companies/"+env.late.ID.String(), token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var detail companyDetail
	decodeData(t, rec, &detail)
	assert.Equal(t, "Late Co", detail.Name)
	assert.Len(t, detail.Recent, 1)

	rec = env.do(t, http.MethodGet, "/api/v1/companies/00000000-0000-0000-0000-000000000001", token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/companies/not-a-uuid", token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminRoutesRejectRegularUser(t *testing.T) {
	env := newTestEnv(t)
	body := `{"name":"New Co","communication_periodicity":7}`

	rec := env.do(t, http.MethodPost, "/api/v1/companies", env.login(t, "user@example.com", "user"), body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/companies", env.login(t, "admin@example.com", "admin"), body)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	companies, err := db.ListCompanies(env.db)
	require.NoError(t, err)
	assert.Len(t, companies, 3)
}

func TestCreateCompanyValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "admin@example.com", "admin")

	rec := env.do(t, http.MethodPost, "/api/v1/companies", token, `{"name":"No cadence"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/v1/companies/00000000-0000-0000-0000-000000000001", token,
		`{"name":"Ghost","communication_periodicity":3}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogCommunicationResolvesNotifications(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "user@example.com", "user")

	rec := env.do(t, http.MethodGet, "/api/v1/notifications", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list notificationList
	decodeData(t, rec, &list)
	assert.Len(t, list.Notifications, 2)
	assert.Equal(t, 2, list.Unread)

	body := `{"company_ids":["` + env.late.ID.String() + `","` + env.due.ID.String() + `"],"type":"linkedin_post","notes":"shared launch"}`
	rec = env.do(t, http.MethodPost, "/api/v1/communications", token, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/v1/notifications", token, "")
	list = notificationList{}
	decodeData(t, rec, &list)
	assert.Empty(t, list.Notifications)

	rec = env.do(t, http.MethodGet, "/api/v1/status/summary", token, "")
	assert.Contains(t, rec.Body.String(), `"upcoming":2`)
}

func TestLogCommunicationUnknownCompany(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "user@example.com", "user")

	body := `{"company_ids":["` + uuid.New().String() + `"],"type":"email"}`
	rec := env.do(t, http.MethodPost, "/api/v1/communications", token, body)
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())

	// one bad id rejects the whole batch
	body = `{"company_ids":["` + env.late.ID.String() + `","` + uuid.New().String() + `"],"type":"email"}`
	rec = env.do(t, http.MethodPost, "/api/v1/communications", token, body)
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())

	comms, err := db.ListCommunications(env.db, db.CommunicationFilter{})
	require.NoError(t, err)
	assert.Len(t, comms, 2)
}

func TestUpdateCommunicationCompany(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "admin@example.com", "admin")

	comms, err := db.ListCommunications(env.db, db.CommunicationFilter{CompanyID: &env.late.ID})
	require.NoError(t, err)
	require.Len(t, comms, 1)
	path := "/api/v1/communications/" + comms[0].ID.String()

	rec := env.do(t, http.MethodPut, path, token, `{"company_id":"`+uuid.New().String()+`","type":"email","date":"2026-10-10"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPut, path, token, `{"type":"phone_call","date":"2026-10-12"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stored, err := db.GetCommunication(env.db, comms[0].ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, env.late.ID, stored.CompanyID, "company is kept when the body omits it")
	assert.Equal(t, models.CommunicationPhoneCall, stored.Type)
}

func TestUpdateCompanyReturnsStoredRow(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "admin@example.com", "admin")

	rec := env.do(t, http.MethodPut, "/api/v1/companies/"+env.late.ID.String(), token,
		`{"name":"Later Co","communication_periodicity":5}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var company models.Company
	decodeData(t, rec, &company)
	assert.Equal(t, "Later Co", company.Name)
	assert.Equal(t, 5, company.Periodicity)
	assert.False(t, company.CreatedAt.IsZero())
	assert.Equal(t, env.late.CreatedAt.Unix(), company.CreatedAt.Unix())
}

func TestMarkNotificationRead(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "user@example.com", "user")
	env.do(t, http.MethodGet, "/api/v1/notifications", token, "")

	id := models.NotificationKey(models.NotificationOverdue, env.late.ID)
	rec := env.do(t, http.MethodPost, "/api/v1/notifications/"+id+"/read", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/notifications", token, "")
	var list notificationList
	decodeData(t, rec, &list)
	assert.Equal(t, 1, list.Unread, "read flag survives the resync")

	rec = env.do(t, http.MethodPost, "/api/v1/notifications/missing/read", token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/notifications/read-all", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	count, err := db.UnreadNotificationCount(env.db)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestReorderMethods(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "admin@example.com", "admin")

	methods, err := db.ListMethods(env.db)
	require.NoError(t, err)
	body := `{"ids":["` + methods[1].ID.String() + `","` + methods[0].ID.String() + `"]}`

	rec := env.do(t, http.MethodPut, "/api/v1/methods/order", token, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var reordered []models.CommunicationMethod
	decodeData(t, rec, &reordered)
	assert.Equal(t, "Phone Call", reordered[0].Name)

	rec = env.do(t, http.MethodPut, "/api/v1/methods/order", token, `{"ids":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportCSV(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "user@example.com", "user")

	rec := env.do(t, http.MethodGet, "/api/v1/reports/csv?month=2026-10", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="communications-report-2026-10.csv"`, rec.Header().Get("Content-Disposition"))

	lines := strings.Split(rec.Body.String(), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, `"Date","Company","Type","Notes"`, lines[0])
	assert.Equal(t, `"2026-10-08","Late Co","Email","sent deck; asked for feedback"`, lines[1])

	rec = env.do(t, http.MethodGet, "/api/v1/reports?month=october", token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardPage(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Late Co")
	assert.Contains(t, rec.Body.String(), "status-overdue")
}

func TestRunStopsOnCancel(t *testing.T) {
	env := newTestEnv(t)
	directory, err := auth.NewDirectory()
	require.NoError(t, err)
	srv, err := NewServer(env.db, Options{Tokens: auth.NewTokenAuth("s", time.Hour), Directory: directory})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, "127.0.0.1:0") }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
