// ABOUTME: MCP prompt handlers for reusable outreach workflow templates
// ABOUTME: Builds follow-up and company overview prompts from current cadence status
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

type PromptHandlers struct {
	db  *sql.DB
	now func() time.Time
}

func NewPromptHandlers(database *sql.DB, now func() time.Time) *PromptHandlers {
	if now == nil {
		now = time.Now
	}
	return &PromptHandlers{db: database, now: now}
}

// Prompts lists the prompt definitions served by GetPrompt.
func (h *PromptHandlers) Prompts() []*mcp.Prompt {
	return []*mcp.Prompt{
		{
			Name:        "follow-up-suggestions",
			Description: "Plan outreach for companies that are overdue or due today",
		},
		{
			Name:        "company-overview",
			Description: "Summarize the communication history with one company",
			Arguments: []*mcp.PromptArgument{
				{Name: "company_id", Description: "UUID of the company", Required: true},
			},
		},
	}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := request.Params.Name
	arguments := request.Params.Arguments
	switch name {
	case "follow-up-suggestions":
		return h.getFollowUpSuggestionsPrompt()
	case "company-overview":
		return h.getCompanyOverviewPrompt(arguments)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", name)
	}
}

func (h *PromptHandlers) getFollowUpSuggestionsPrompt() (*mcp.GetPromptResult, error) {
	statuses, err := db.CompanyStatuses(h.db, h.now())
	if err != nil {
		return nil, fmt.Errorf("failed to compute statuses: %w", err)
	}
	methods, err := db.ListMethods(h.db)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch methods: %w", err)
	}

	var promptText strings.Builder
	promptText.WriteString(fmt.Sprintf("Companies needing outreach as of %s:\n\n", h.now().Format(status.DateFormat)))

	count := 0
	for _, cs := range statuses {
		if cs.Status != models.StatusOverdue && cs.Status != models.StatusDue {
			continue
		}
		count++
		promptText.WriteString(fmt.Sprintf("- %s (%s", cs.Name, cs.Status))
		if cs.NextDate != nil {
			promptText.WriteString(fmt.Sprintf(", expected %s", cs.NextDate.Format(status.DateFormat)))
		}
		promptText.WriteString(")")
		if cs.Latest != nil {
			promptText.WriteString(fmt.Sprintf("; last: %s on %s", cs.Latest.Type, cs.Latest.Date.Format(status.DateFormat)))
			if cs.Latest.Notes != "" {
				promptText.WriteString(fmt.Sprintf(" (%s)", cs.Latest.Notes))
			}
		}
		promptText.WriteString("\n")
	}

	if count == 0 {
		promptText.WriteString("No company is overdue or due today.\n")
	}

	if len(methods) > 0 {
		promptText.WriteString("\nOutreach methods in order:")
		for _, m := range methods {
			mandatory := ""
			if m.Mandatory {
				mandatory = " (mandatory)"
			}
			promptText.WriteString(fmt.Sprintf("\n%d. %s%s", m.Sequence, m.Name, mandatory))
		}
		promptText.WriteString("\n")
	}

	promptText.WriteString("\nPlease:")
	promptText.WriteString("\n1. Prioritize which companies to reach out to first")
	promptText.WriteString("\n2. Pick the next method for each, following the sequence")
	promptText.WriteString("\n3. Draft a short message for the top three")

	return &mcp.GetPromptResult{
		Description: "Follow-up suggestions for overdue and due companies",
		Messages: []*mcp.PromptMessage{
			{
				Role: "user",
				Content: &mcp.TextContent{
					Text: promptText.String(),
				},
			},
		},
	}, nil
}

func (h *PromptHandlers) getCompanyOverviewPrompt(args map[string]string) (*mcp.GetPromptResult, error) {
	companyIDStr, ok := args["company_id"]
	if !ok {
		return nil, fmt.Errorf("company_id is required")
	}

	companyID, err := uuid.Parse(companyIDStr)
	if err != nil {
		return nil, fmt.Errorf("invalid company_id: %w", err)
	}

	cs, err := db.CompanyStatusByID(h.db, companyID, h.now())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch company: %w", err)
	}
	if cs == nil {
		return nil, fmt.Errorf("company not found: %s", companyID)
	}

	comms, err := db.ListCommunications(h.db, db.CommunicationFilter{CompanyID: &companyID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch communications: %w", err)
	}

	var promptText strings.Builder
	promptText.WriteString(fmt.Sprintf("Complete overview of: %s\n\n", cs.Name))

	if cs.Location != "" {
		promptText.WriteString(fmt.Sprintf("Location: %s\n", cs.Location))
	}
	if cs.LinkedInProfile != "" {
		promptText.WriteString(fmt.Sprintf("LinkedIn: %s\n", cs.LinkedInProfile))
	}
	promptText.WriteString(fmt.Sprintf("Cadence: every %d days, currently %s\n", cs.Periodicity, cs.Status))

	promptText.WriteString(fmt.Sprintf("\nCommunications: %d logged\n", len(comms)))
	for _, c := range comms {
		promptText.WriteString(fmt.Sprintf("  - %s %s", c.Date.Format(status.DayLayout), c.Type))
		if c.Notes != "" {
			promptText.WriteString(": " + c.Notes)
		}
		promptText.WriteString("\n")
	}

	if cs.Comments != "" {
		promptText.WriteString(fmt.Sprintf("\nComments: %s\n", cs.Comments))
	}

	promptText.WriteString("\nPlease provide:")
	promptText.WriteString("\n1. A summary of the relationship with this company")
	promptText.WriteString("\n2. Gaps in the outreach so far")
	promptText.WriteString("\n3. Recommended next actions")

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Overview of %s", cs.Name),
		Messages: []*mcp.PromptMessage{
			{
				Role: "user",
				Content: &mcp.TextContent{
					Text: promptText.String(),
				},
			},
		},
	}, nil
}
