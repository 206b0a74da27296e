// ABOUTME: Company MCP tool handlers
// ABOUTME: Implements list_companies, company_status, and admin-only add_company tools
package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/commtrack/auth"
	"github.com/harperreed/commtrack/db"
	"github.com/harperreed/commtrack/models"
	"github.com/harperreed/commtrack/status"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// CurrentUser yields the logged-in user, or nil when nobody is logged in.
// session.Store satisfies it.
type CurrentUser interface {
	Load() (*models.User, error)
}

type CompanyHandlers struct {
	db      *sql.DB
	session CurrentUser
	now     func() time.Time
}

func NewCompanyHandlers(database *sql.DB, session CurrentUser, now func() time.Time) *CompanyHandlers {
	if now == nil {
		now = time.Now
	}
	return &CompanyHandlers{db: database, session: session, now: now}
}

type CompanyOutput struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Location        string   `json:"location,omitempty"`
	LinkedInProfile string   `json:"linkedin_profile,omitempty"`
	Emails          []string `json:"emails"`
	PhoneNumbers    []string `json:"phone_numbers"`
	Comments        string   `json:"comments,omitempty"`
	Periodicity     int      `json:"communication_periodicity"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
}

type CompanyStatusOutput struct {
	Company               CompanyOutput         `json:"company"`
	Status                string                `json:"status"`
	LastCommunication     *CommunicationOutput  `json:"last_communication,omitempty"`
	NextCommunicationDate string                `json:"next_communication_date,omitempty"`
	Recent                []CommunicationOutput `json:"recent_communications,omitempty"`
}

type ListCompaniesInput struct {
	Query  string `json:"query,omitempty" jsonschema:"Search query (matches name and location)"`
	Status string `json:"status,omitempty" jsonschema:"Only companies with this status: overdue, due, upcoming, or none"`
}

type ListCompaniesOutput struct {
	Companies []CompanyStatusOutput `json:"companies"`
	Summary   status.Summary        `json:"summary"`
}

func (h *CompanyHandlers) ListCompanies(_ context.Context, request *mcp.CallToolRequest, input ListCompaniesInput) (*mcp.CallToolResult, ListCompaniesOutput, error) {
	if input.Status != "" && !validStatus(input.Status) {
		return nil, ListCompaniesOutput{}, fmt.Errorf("unknown status: %s (valid: overdue, due, upcoming, none)", input.Status)
	}

	statuses, err := db.CompanyStatuses(h.db, h.now())
	if err != nil {
		return nil, ListCompaniesOutput{}, fmt.Errorf("failed to compute statuses: %w", err)
	}

	query := strings.ToLower(strings.TrimSpace(input.Query))
	result := make([]CompanyStatusOutput, 0, len(statuses))
	for _, cs := range statuses {
		if query != "" && !strings.Contains(strings.ToLower(cs.Name), query) && !strings.Contains(strings.ToLower(cs.Location), query) {
			continue
		}
		if input.Status != "" && string(cs.Status) != input.Status {
			continue
		}
		result = append(result, companyStatusToOutput(cs))
	}

	return nil, ListCompaniesOutput{Companies: result, Summary: status.Summarize(statuses)}, nil
}

type CompanyStatusInput struct {
	CompanyID string `json:"company_id" jsonschema:"UUID of the company"`
}

func (h *CompanyHandlers) CompanyStatus(_ context.Context, request *mcp.CallToolRequest, input CompanyStatusInput) (*mcp.CallToolResult, CompanyStatusOutput, error) {
	if input.CompanyID == "" {
		return nil, CompanyStatusOutput{}, fmt.Errorf("company_id is required")
	}

	companyID, err := uuid.Parse(input.CompanyID)
	if err != nil {
		return nil, CompanyStatusOutput{}, fmt.Errorf("invalid company_id: %w", err)
	}

	cs, err := db.CompanyStatusByID(h.db, companyID, h.now())
	if err != nil {
		return nil, CompanyStatusOutput{}, fmt.Errorf("failed to load company: %w", err)
	}
	if cs == nil {
		return nil, CompanyStatusOutput{}, fmt.Errorf("company not found: %s", companyID)
	}

	recent, err := db.RecentCommunications(h.db, companyID, 5)
	if err != nil {
		return nil, CompanyStatusOutput{}, fmt.Errorf("failed to load communications: %w", err)
	}

	out := companyStatusToOutput(*cs)
	out.Recent = communicationsToOutput(recent)
	return nil, out, nil
}

type AddCompanyInput struct {
	Name            string   `json:"name" jsonschema:"Company name (required)"`
	Location        string   `json:"location,omitempty" jsonschema:"City and region"`
	LinkedInProfile string   `json:"linkedin_profile,omitempty" jsonschema:"LinkedIn company page URL"`
	Emails          []string `json:"emails,omitempty" jsonschema:"Contact email addresses"`
	PhoneNumbers    []string `json:"phone_numbers,omitempty" jsonschema:"Contact phone numbers"`
	Comments        string   `json:"comments,omitempty" jsonschema:"Free-form comments"`
	Periodicity     int      `json:"communication_periodicity" jsonschema:"Days between expected communications (at least 1)"`
}

// AddCompany is restricted to administrators. The actor is whoever is logged in
// through the login command.
func (h *CompanyHandlers) AddCompany(_ context.Context, request *mcp.CallToolRequest, input AddCompanyInput) (*mcp.CallToolResult, CompanyOutput, error) {
	if err := h.requireAdmin(); err != nil {
		return nil, CompanyOutput{}, err
	}

	company := &models.Company{
		Name:            input.Name,
		Location:        input.Location,
		LinkedInProfile: input.LinkedInProfile,
		Emails:          input.Emails,
		PhoneNumbers:    input.PhoneNumbers,
		Comments:        input.Comments,
		Periodicity:     input.Periodicity,
	}

	if err := db.CreateCompany(h.db, company); err != nil {
		return nil, CompanyOutput{}, fmt.Errorf("failed to create company: %w", err)
	}

	return nil, companyToOutput(company), nil
}

func (h *CompanyHandlers) requireAdmin() error {
	if h.session == nil {
		return fmt.Errorf("add_company requires a logged-in administrator: %w", models.ErrUnauthorized)
	}
	user, err := h.session.Load()
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}
	if err := auth.RequireAdmin(user); err != nil {
		return fmt.Errorf("add_company requires a logged-in administrator: %w", err)
	}
	return nil
}

func validStatus(s string) bool {
	switch models.Status(s) {
	case models.StatusOverdue, models.StatusDue, models.StatusUpcoming, models.StatusNone:
		return true
	}
	return false
}

func companyToOutput(company *models.Company) CompanyOutput {
	return CompanyOutput{
		ID:              company.ID.String(),
		Name:            company.Name,
		Location:        company.Location,
		LinkedInProfile: company.LinkedInProfile,
		Emails:          nonNil(company.Emails),
		PhoneNumbers:    nonNil(company.PhoneNumbers),
		Comments:        company.Comments,
		Periodicity:     company.Periodicity,
		CreatedAt:       company.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       company.UpdatedAt.Format(time.RFC3339),
	}
}

func companyStatusToOutput(cs models.CompanyStatus) CompanyStatusOutput {
	out := CompanyStatusOutput{
		Company: companyToOutput(&cs.Company),
		Status:  string(cs.Status),
	}
	if cs.Latest != nil {
		latest := communicationToOutput(*cs.Latest)
		out.LastCommunication = &latest
	}
	if cs.NextDate != nil {
		out.NextCommunicationDate = cs.NextDate.Format(status.DayLayout)
	}
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
