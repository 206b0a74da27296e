// ABOUTME: Report MCP tool handler
// ABOUTME: Implements monthly_report with optional CSV rendering
package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/commtrack/db"
	"github.com/harperreed/commtrack/report"
	"github.com/harperreed/commtrack/status"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type ReportHandlers struct {
	db  *sql.DB
	now func() time.Time
}

func NewReportHandlers(database *sql.DB, now func() time.Time) *ReportHandlers {
	if now == nil {
		now = time.Now
	}
	return &ReportHandlers{db: database, now: now}
}

type MonthlyReportInput struct {
	Month     string `json:"month,omitempty" jsonschema:"Month as YYYY-MM (default current month)"`
	CompanyID string `json:"company_id,omitempty" jsonschema:"Limit the report to one company UUID"`
	Format    string `json:"format,omitempty" jsonschema:"json (default) or csv"`
}

type ReportRowOutput struct {
	Date    string `json:"date"`
	Company string `json:"company"`
	Type    string `json:"type"`
	Notes   string `json:"notes,omitempty"`
}

type CountOutput struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type MonthlyReportOutput struct {
	Month     string            `json:"month"`
	Total     int               `json:"total"`
	Rows      []ReportRowOutput `json:"rows"`
	ByType    []CountOutput     `json:"by_type"`
	ByCompany []CountOutput     `json:"by_company"`
	FileName  string            `json:"file_name,omitempty"`
	CSV       string            `json:"csv,omitempty"`
}

func (h *ReportHandlers) MonthlyReport(_ context.Context, request *mcp.CallToolRequest, input MonthlyReportInput) (*mcp.CallToolResult, MonthlyReportOutput, error) {
	month := report.MonthOf(h.now())
	if input.Month != "" {
		m, err := report.ParseMonth(input.Month)
		if err != nil {
			return nil, MonthlyReportOutput{}, err
		}
		month = m
	}

	var companyID *uuid.UUID
	if input.CompanyID != "" {
		id, err := uuid.Parse(input.CompanyID)
		if err != nil {
			return nil, MonthlyReportOutput{}, fmt.Errorf("invalid company_id: %w", err)
		}
		companyID = &id
	}

	switch input.Format {
	case "", "json", "csv":
	default:
		return nil, MonthlyReportOutput{}, fmt.Errorf("unknown format: %s (valid: json, csv)", input.Format)
	}

	companies, err := db.ListCompanies(h.db)
	if err != nil {
		return nil, MonthlyReportOutput{}, fmt.Errorf("failed to list companies: %w", err)
	}
	comms, err := db.ListCommunications(h.db, db.CommunicationFilter{})
	if err != nil {
		return nil, MonthlyReportOutput{}, fmt.Errorf("failed to list communications: %w", err)
	}
	rep := report.Build(companies, comms, month, companyID)

	out := MonthlyReportOutput{
		Month:     rep.Month.Format(report.MonthLayout),
		Total:     rep.Total,
		Rows:      make([]ReportRowOutput, len(rep.Rows)),
		ByType:    make([]CountOutput, len(rep.ByType)),
		ByCompany: make([]CountOutput, len(rep.ByCompany)),
	}
	for i, row := range rep.Rows {
		out.Rows[i] = ReportRowOutput{
			Date:    row.Date.Format(status.DayLayout),
			Company: row.CompanyName,
			Type:    string(row.Type),
			Notes:   row.Notes,
		}
	}
	for i, tc := range rep.ByType {
		out.ByType[i] = CountOutput{Label: string(tc.Type), Count: tc.Count}
	}
	for i, cc := range rep.ByCompany {
		out.ByCompany[i] = CountOutput{Label: cc.Name, Count: cc.Count}
	}

	if input.Format == "csv" {
		var buf bytes.Buffer
		if err := report.WriteCSV(&buf, rep); err != nil {
			return nil, MonthlyReportOutput{}, fmt.Errorf("failed to write csv: %w", err)
		}
		out.FileName = report.FileName(rep.Month)
		out.CSV = buf.String()
	}

	return nil, out, nil
}
