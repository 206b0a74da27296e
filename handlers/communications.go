// ABOUTME: Communication MCP tool handlers
// ABOUTME: Implements log_communication for one or several companies at once
package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/commtrack/db"
	"github.com/harperreed/commtrack/models"
	"github.com/harperreed/commtrack/status"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type CommunicationHandlers struct {
	db  *sql.DB
	now func() time.Time
}

func NewCommunicationHandlers(database *sql.DB, now func() time.Time) *CommunicationHandlers {
	if now == nil {
		now = time.Now
	}
	return &CommunicationHandlers{db: database, now: now}
}

type CommunicationOutput struct {
	ID        string `json:"id"`
	CompanyID string `json:"company_id"`
	Type      string `json:"type"`
	Date      string `json:"date"`
	Notes     string `json:"notes,omitempty"`
}

type LogCommunicationInput struct {
	CompanyIDs []string `json:"company_ids" jsonschema:"UUIDs of the companies contacted (at least one)"`
	Type       string   `json:"type" jsonschema:"LinkedIn Post, LinkedIn Message, Email, Phone Call, or Other"`
	Date       string   `json:"date,omitempty" jsonschema:"Date of the communication as YYYY-MM-DD (default today)"`
	Notes      string   `json:"notes,omitempty" jsonschema:"What was said or sent"`
}

type LogCommunicationOutput struct {
	Logged  []CommunicationOutput `json:"logged"`
	Message string                `json:"message"`
}

func (h *CommunicationHandlers) LogCommunication(_ context.Context, request *mcp.CallToolRequest, input LogCommunicationInput) (*mcp.CallToolResult, LogCommunicationOutput, error) {
	if len(input.CompanyIDs) == 0 {
		return nil, LogCommunicationOutput{}, fmt.Errorf("company_ids is required")
	}

	typ, err := models.ParseCommunicationType(input.Type)
	if err != nil {
		return nil, LogCommunicationOutput{}, err
	}

	date := status.DateOf(h.now())
	if strings.TrimSpace(input.Date) != "" {
		date, err = time.Parse(status.DayLayout, strings.TrimSpace(input.Date))
		if err != nil {
			return nil, LogCommunicationOutput{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", input.Date)
		}
	}

	ids := make([]uuid.UUID, 0, len(input.CompanyIDs))
	names := make([]string, 0, len(input.CompanyIDs))
	for _, raw := range input.CompanyIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, LogCommunicationOutput{}, fmt.Errorf("invalid company id %q: %w", raw, err)
		}
		company, err := db.GetCompany(h.db, id)
		if err != nil {
			return nil, LogCommunicationOutput{}, fmt.Errorf("failed to load company: %w", err)
		}
		if company == nil {
			return nil, LogCommunicationOutput{}, fmt.Errorf("company not found: %s", id)
		}
		ids = append(ids, id)
		names = append(names, company.Name)
	}

	logged, err := db.LogCommunications(h.db, ids, models.Communication{Type: typ, Date: date, Notes: input.Notes})
	if err != nil {
		return nil, LogCommunicationOutput{}, fmt.Errorf("failed to log communication: %w", err)
	}
	if _, err := db.SyncNotifications(h.db, h.now()); err != nil {
		return nil, LogCommunicationOutput{}, fmt.Errorf("failed to refresh notifications: %w", err)
	}

	return nil, LogCommunicationOutput{
		Logged:  communicationsToOutput(logged),
		Message: fmt.Sprintf("Logged %s on %s for %s", typ, date.Format(status.DayLayout), strings.Join(names, ", ")),
	}, nil
}

func communicationToOutput(c models.Communication) CommunicationOutput {
	return CommunicationOutput{
		ID:        c.ID.String(),
		CompanyID: c.CompanyID.String(),
		Type:      string(c.Type),
		Date:      c.Date.Format(status.DayLayout),
		Notes:     c.Notes,
	}
}

func communicationsToOutput(comms []models.Communication) []CommunicationOutput {
	out := make([]CommunicationOutput, len(comms))
	for i, c := range comms {
		out[i] = communicationToOutput(c)
	}
	return out
}
