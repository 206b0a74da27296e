// ABOUTME: HTTP API handlers for companies, communications, methods, and notifications
// ABOUTME: Decodes requests, calls the state container, and answers in the JSON envelope
package web

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/harperreed/commtrack/db"
	"github.com/harperreed/commtrack/models"
	"github.com/harperreed/commtrack/report"
	"github.com/harperreed/commtrack/status"
	"github.com/harperreed/commtrack/viz"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

type communicationRequest struct {
	CompanyIDs []uuid.UUID `json:"company_ids"`
	CompanyID  *uuid.UUID  `json:"company_id,omitempty"`
	Type       string      `json:"type"`
	Date       string      `json:"date"`
	Notes      string      `json:"notes"`
}

type companyDetail struct {
	models.CompanyStatus
	Recent []models.Communication `json:"recent_communications"`
}

type notificationList struct {
	Notifications []models.Notification `json:"notifications"`
	Unread        int                   `json:"unread"`
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", models.ErrInvalidInput, err)
	}
	return nil
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s", models.ErrInvalidInput, name)
	}
	return id, nil
}

// parseDate reads "YYYY-MM-DD"; an empty string means today.
func parseDate(s string, today time.Time) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return status.DateOf(today), nil
	}
	d, err := time.Parse(status.DayLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must look like 2026-10-18, got %q", models.ErrInvalidInput, s)
	}
	return d, nil
}

func (s *Server) fail(w http.ResponseWriter, msg string, err error) {
	s.logger.Debug(msg, zap.Error(err))
	HandleError(w, err)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		HandleError(w, err)
		return
	}

	user, err := s.directory.Authenticate(req.Email, req.Password)
	if err != nil {
		s.fail(w, "login rejected", err)
		return
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		s.fail(w, "failed to issue token", err)
		return
	}

	SuccessWithMessage(w, "Login successful", loginResponse{Token: token, ExpiresAt: expiresAt, User: user})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	Success(w, UserFromContext(r.Context()))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	statuses, err := db.CompanyStatuses(s.db, s.now())
	if err != nil {
		s.fail(w, "failed to compute statuses", err)
		return
	}
	Success(w, status.Summarize(statuses))
}

func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	statuses, err := db.CompanyStatuses(s.db, s.now())
	if err != nil {
		s.fail(w, "failed to compute statuses", err)
		return
	}

	if q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q"))); q != "" {
		filtered := statuses[:0]
		for _, cs := range statuses {
			if strings.Contains(strings.ToLower(cs.Name), q) || strings.Contains(strings.ToLower(cs.Location), q) {
				filtered = append(filtered, cs)
			}
		}
		statuses = filtered
	}
	if want := r.URL.Query().Get("status"); want != "" {
		filtered := statuses[:0]
		for _, cs := range statuses {
			if string(cs.Status) == want {
				filtered = append(filtered, cs)
			}
		}
		statuses = filtered
	}

	Success(w, statuses)
}

func (s *Server) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		HandleError(w, err)
		return
	}

	cs, err := db.CompanyStatusByID(s.db, id, s.now())
	if err != nil {
		s.fail(w, "failed to load company", err)
		return
	}
	if cs == nil {
		NotFound(w, "Company not found")
		return
	}

	recent, err := db.RecentCommunications(s.db, id, 5)
	if err != nil {
		s.fail(w, "failed to load communications", err)
		return
	}
	Success(w, companyDetail{CompanyStatus: *cs, Recent: recent})
}

func (s *Server) handleCompanyCommunications(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		HandleError(w, err)
		return
	}
	comms, err := db.ListCommunications(s.db, db.CommunicationFilter{CompanyID: &id})
	if err != nil {
		s.fail(w, "failed to list communications", err)
		return
	}
	Success(w, comms)
}

func (s *Server) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	var company models.Company
	if err := decodeJSON(r, &company); err != nil {
		HandleError(w, err)
		return
	}
	company.ID = uuid.Nil

	if err := db.CreateCompany(s.db, &company); err != nil {
		s.fail(w, "failed to create company", err)
		return
	}
	Created(w, "Company created successfully", company)
}

func (s *Server) handleUpdateCompany(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		HandleError(w, err)
		return
	}

	var company models.Company
	if err := decodeJSON(r, &company); err != nil {
		HandleError(w, err)
		return
	}

	ok, err := db.UpdateCompany(s.db, id, &company)
	if err != nil {
		s.fail(w, "failed to update company", err)
		return
	}
	if !ok {
		NotFound(w, "Company not found")
		return
	}
	updated, err := db.GetCompany(s.db, id)
	if err != nil {
		s.fail(w, "failed to reload company", err)
		return
	}
	SuccessWithMessage(w, "Company updated successfully", updated)
}

func (s *Server) handleDeleteCompany(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		HandleError(w, err)
		return
	}

	ok, err := db.DeleteCompany(s.db, id)
	if err != nil {
		s.fail(w, "failed to delete company", err)
		return
	}
	if !ok {
		NotFound(w, "Company not found")
		return
	}
	SuccessWithMessage(w, "Company deleted successfully", nil)
}

func (s *Server) handleListCommunications(w http.ResponseWriter, r *http.Request) {
	var filter db.CommunicationFilter
	q := r.URL.Query()

	if v := q.Get("company"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			BadRequest(w, "invalid company")
			return
		}
		filter.CompanyID = &id
	}
	for key, dst := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		if v := q.Get(key); v != "" {
			d, err := parseDate(v, s.now())
			if err != nil {
				HandleError(w, err)
				return
			}
			*dst = &d
		}
	}

	comms, err := db.ListCommunications(s.db, filter)
	if err != nil {
		s.fail(w, "failed to list communications", err)
		return
	}
	Success(w, comms)
}

func (req communicationRequest) template(today time.Time) (models.Communication, error) {
	typ, err := models.ParseCommunicationType(req.Type)
	if err != nil {
		return models.Communication{}, err
	}
	date, err := parseDate(req.Date, today)
	if err != nil {
		return models.Communication{}, err
	}
	return models.Communication{Type: typ, Date: date, Notes: req.Notes}, nil
}

// handleLogCommunications logs one communication against each selected company.
func (s *Server) handleLogCommunications(w http.ResponseWriter, r *http.Request) {
	var req communicationRequest
	if err := decodeJSON(r, &req); err != nil {
		HandleError(w, err)
		return
	}
	if req.CompanyID != nil {
		req.CompanyIDs = append(req.CompanyIDs, *req.CompanyID)
	}

	tmpl, err := req.template(s.now())
	if err != nil {
		HandleError(w, err)
		return
	}

	if err := s.knownCompanies(req.CompanyIDs); err != nil {
		s.fail(w, "failed to log communications", err)
		return
	}

	logged, err := db.LogCommunications(s.db, req.CompanyIDs, tmpl)
	if err != nil {
		s.fail(w, "failed to log communications", err)
		return
	}
	if _, err := db.SyncNotifications(s.db, s.now()); err != nil {
		s.logger.Warn("failed to sync notifications", zap.Error(err))
	}
	Created(w, fmt.Sprintf("Logged %d communication(s)", len(logged)), logged)
}

func (s *Server) handleUpdateCommunication(w http.ResponseWriter, r *http.Request) {
	id, err := ulid.ParseStrict(chi.URLParam(r, "id"))
	if err != nil {
		BadRequest(w, "invalid id")
		return
	}

	var req communicationRequest
	if err := decodeJSON(r, &req); err != nil {
		HandleError(w, err)
		return
	}
	comm, err := req.template(s.now())
	if err != nil {
		HandleError(w, err)
		return
	}
	existing, err := db.GetCommunication(s.db, id)
	if err != nil {
		s.fail(w, "failed to load communication", err)
		return
	}
	if existing == nil {
		NotFound(w, "Communication not found")
		return
	}
	comm.CompanyID = existing.CompanyID
	if req.CompanyID != nil {
		if err := s.knownCompanies([]uuid.UUID{*req.CompanyID}); err != nil {
			s.fail(w, "failed to update communication", err)
			return
		}
		comm.CompanyID = *req.CompanyID
	}

	ok, err := db.UpdateCommunication(s.db, id, &comm)
	if err != nil {
		s.fail(w, "failed to update communication", err)
		return
	}
	if !ok {
		NotFound(w, "Communication not found")
		return
	}
	SuccessWithMessage(w, "Communication updated successfully", comm)
}

// knownCompanies fails with ErrNotFound on the first id that names no company.
func (s *Server) knownCompanies(ids []uuid.UUID) error {
	for _, id := range ids {
		company, err := db.GetCompany(s.db, id)
		if err != nil {
			return err
		}
		if company == nil {
			return fmt.Errorf("%w: company %s", models.ErrNotFound, id)
		}
	}
	return nil
}

func (s *Server) handleDeleteCommunication(w http.ResponseWriter, r *http.Request) {
	id, err := ulid.ParseStrict(chi.URLParam(r, "id"))
	if err != nil {
		BadRequest(w, "invalid id")
		return
	}

	ok, err := db.DeleteCommunication(s.db, id)
	if err != nil {
		s.fail(w, "failed to delete communication", err)
		return
	}
	if !ok {
		NotFound(w, "Communication not found")
		return
	}
	SuccessWithMessage(w, "Communication deleted successfully", nil)
}

func (s *Server) handleListMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := db.ListMethods(s.db)
	if err != nil {
		s.fail(w, "failed to list methods", err)
		return
	}
	Success(w, methods)
}

func (s *Server) handleCreateMethod(w http.ResponseWriter, r *http.Request) {
	var method models.CommunicationMethod
	if err := decodeJSON(r, &method); err != nil {
		HandleError(w, err)
		return
	}
	if err := db.CreateMethod(s.db, &method); err != nil {
		s.fail(w, "failed to create method", err)
		return
	}
	Created(w, "Method created successfully", method)
}

func (s *Server) handleUpdateMethod(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		HandleError(w, err)
		return
	}

	var method models.CommunicationMethod
	if err := decodeJSON(r, &method); err != nil {
		HandleError(w, err)
		return
	}

	ok, err := db.UpdateMethod(s.db, id, &method)
	if err != nil {
		s.fail(w, "failed to update method", err)
		return
	}
	if !ok {
		NotFound(w, "Method not found")
		return
	}
	SuccessWithMessage(w, "Method updated successfully", method)
}

func (s *Server) handleDeleteMethod(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		HandleError(w, err)
		return
	}

	ok, err := db.DeleteMethod(s.db, id)
	if err != nil {
		s.fail(w, "failed to delete method", err)
		return
	}
	if !ok {
		NotFound(w, "Method not found")
		return
	}
	SuccessWithMessage(w, "Method deleted successfully", nil)
}

func (s *Server) handleReorderMethods(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []uuid.UUID `json:"ids"`
	}
	if err := decodeJSON(r, &req); err != nil {
		HandleError(w, err)
		return
	}

	if err := db.ReorderMethods(s.db, req.IDs); err != nil {
		s.fail(w, "failed to reorder methods", err)
		return
	}

	methods, err := db.ListMethods(s.db)
	if err != nil {
		s.fail(w, "failed to list methods", err)
		return
	}
	SuccessWithMessage(w, "Methods reordered successfully", methods)
}

func listNotifications(database *sql.DB) (notificationList, error) {
	notifications, err := db.ListNotifications(database)
	if err != nil {
		return notificationList{}, err
	}
	unread, err := db.UnreadNotificationCount(database)
	if err != nil {
		return notificationList{}, err
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	return notificationList{Notifications: notifications, Unread: unread}, nil
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	if _, err := db.SyncNotifications(s.db, s.now()); err != nil {
		s.fail(w, "failed to sync notifications", err)
		return
	}

	list, err := listNotifications(s.db)
	if err != nil {
		s.fail(w, "failed to list notifications", err)
		return
	}
	Success(w, list)
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	ok, err := db.MarkNotificationRead(s.db, chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "failed to mark notification", err)
		return
	}
	if !ok {
		NotFound(w, "Notification not found")
		return
	}
	SuccessWithMessage(w, "Notification marked as read", nil)
}

func (s *Server) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	if err := db.MarkAllNotificationsRead(s.db); err != nil {
		s.fail(w, "failed to mark notifications", err)
		return
	}
	SuccessWithMessage(w, "All notifications marked as read", nil)
}

func (s *Server) handleClearNotifications(w http.ResponseWriter, r *http.Request) {
	if err := db.ClearNotifications(s.db); err != nil {
		s.fail(w, "failed to clear notifications", err)
		return
	}
	SuccessWithMessage(w, "Notifications cleared", nil)
}

func (s *Server) buildReport(r *http.Request) (*report.Report, error) {
	month := report.MonthOf(s.now())
	if v := r.URL.Query().Get("month"); v != "" {
		m, err := report.ParseMonth(v)
		if err != nil {
			return nil, err
		}
		month = m
	}

	var companyID *uuid.UUID
	if v := r.URL.Query().Get("company"); v != "" && v != "all" {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid company", models.ErrInvalidInput)
		}
		companyID = &id
	}

	companies, err := db.ListCompanies(s.db)
	if err != nil {
		return nil, err
	}
	comms, err := db.ListCommunications(s.db, db.CommunicationFilter{})
	if err != nil {
		return nil, err
	}
	return report.Build(companies, comms, month, companyID), nil
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.buildReport(r)
	if err != nil {
		s.fail(w, "failed to build report", err)
		return
	}
	Success(w, rep)
}

func (s *Server) handleReportCSV(w http.ResponseWriter, r *http.Request) {
	rep, err := s.buildReport(r)
	if err != nil {
		s.fail(w, "failed to build report", err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, rep); err != nil {
		s.fail(w, "failed to write csv", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName(rep.Month)))
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	month := report.MonthOf(s.now())
	if v := r.URL.Query().Get("month"); v != "" {
		m, err := report.ParseMonth(v)
		if err != nil {
			HandleError(w, err)
			return
		}
		month = m
	}

	companies, err := db.ListCompanies(s.db)
	if err != nil {
		s.fail(w, "failed to list companies", err)
		return
	}
	comms, err := db.ListCommunications(s.db, db.CommunicationFilter{})
	if err != nil {
		s.fail(w, "failed to list communications", err)
		return
	}
	Success(w, viz.CalendarEvents(companies, comms, month, s.now()))
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	dot, err := s.generator.GenerateCadenceGraph(s.now())
	if err != nil {
		s.fail(w, "failed to generate graph", err)
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	_, _ = w.Write([]byte(dot))
}
