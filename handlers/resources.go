// ABOUTME: MCP resource handlers for exposing tracker data
// ABOUTME: Provides read-only access to companies, methods, and notifications via URI
package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/commtrack/db"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ResourceScheme prefixes every resource URI served here.
const ResourceScheme = "commtrack://"

type ResourceHandlers struct {
	db  *sql.DB
	now func() time.Time
}

func NewResourceHandlers(database *sql.DB, now func() time.Time) *ResourceHandlers {
	if now == nil {
		now = time.Now
	}
	return &ResourceHandlers{db: database, now: now}
}

// Resources lists the fixed resources; single companies are reached through
// the companies/{id} template.
func (h *ResourceHandlers) Resources() []*mcp.Resource {
	return []*mcp.Resource{
		{URI: ResourceScheme + "companies", Name: "companies", Description: "Every company with its cadence status", MIMEType: "application/json"},
		{URI: ResourceScheme + "methods", Name: "methods", Description: "Communication methods in sequence order", MIMEType: "application/json"},
		{URI: ResourceScheme + "notifications", Name: "notifications", Description: "Current reminders and notices", MIMEType: "application/json"},
	}
}

func (h *ResourceHandlers) CompanyTemplate() *mcp.ResourceTemplate {
	return &mcp.ResourceTemplate{
		URITemplate: ResourceScheme + "companies/{id}",
		Name:        "company",
		Description: "One company with its status and recent communications",
		MIMEType:    "application/json",
	}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	// Parse the URI
	if !strings.HasPrefix(uri, ResourceScheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", ResourceScheme)
	}

	path := strings.TrimPrefix(uri, ResourceScheme)
	parts := strings.Split(path, "/")

	switch parts[0] {
	case "companies":
		if len(parts) == 1 {
			return h.readAllCompanies(uri)
		}
		return h.readCompany(uri, parts[1])

	case "methods":
		methods, err := db.ListMethods(h.db)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch methods: %w", err)
		}
		return jsonResource(uri, methods)

	case "notifications":
		notifications, err := db.SyncNotifications(h.db, h.now())
		if err != nil {
			return nil, fmt.Errorf("failed to fetch notifications: %w", err)
		}
		return jsonResource(uri, notifications)

	default:
		return nil, mcp.ResourceNotFoundError(uri)
	}
}

func (h *ResourceHandlers) readAllCompanies(uri string) (*mcp.ReadResourceResult, error) {
	statuses, err := db.CompanyStatuses(h.db, h.now())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch companies: %w", err)
	}
	return jsonResource(uri, statuses)
}

func (h *ResourceHandlers) readCompany(uri, idStr string) (*mcp.ReadResourceResult, error) {
	companyID, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid company ID: %w", err)
	}

	cs, err := db.CompanyStatusByID(h.db, companyID, h.now())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch company: %w", err)
	}
	if cs == nil {
		return nil, mcp.ResourceNotFoundError(uri)
	}

	recent, err := db.RecentCommunications(h.db, companyID, 5)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch communications: %w", err)
	}

	return jsonResource(uri, map[string]interface{}{
		"company":               cs,
		"recent_communications": recent,
	})
}

func jsonResource(uri string, v interface{}) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}
