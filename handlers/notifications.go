// ABOUTME: Notification MCP tool handlers
// ABOUTME: Implements list_notifications and mark_notification_read tools
package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/commtrack/db"
	"github.com/harperreed/commtrack/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type NotificationHandlers struct {
	db  *sql.DB
	now func() time.Time
}

func NewNotificationHandlers(database *sql.DB, now func() time.Time) *NotificationHandlers {
	if now == nil {
		now = time.Now
	}
	return &NotificationHandlers{db: database, now: now}
}

type NotificationOutput struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	CompanyID string `json:"company_id,omitempty"`
	Read      bool   `json:"is_read"`
	CreatedAt string `json:"created_at"`
}

type ListNotificationsInput struct {
	UnreadOnly bool `json:"unread_only,omitempty" jsonschema:"Only return notifications not yet marked read"`
}

type ListNotificationsOutput struct {
	Notifications []NotificationOutput `json:"notifications"`
	Unread        int                  `json:"unread"`
}

// ListNotifications recomputes overdue and due reminders before listing them.
func (h *NotificationHandlers) ListNotifications(_ context.Context, request *mcp.CallToolRequest, input ListNotificationsInput) (*mcp.CallToolResult, ListNotificationsOutput, error) {
	notifications, err := db.SyncNotifications(h.db, h.now())
	if err != nil {
		return nil, ListNotificationsOutput{}, fmt.Errorf("failed to sync notifications: %w", err)
	}

	out := ListNotificationsOutput{Notifications: []NotificationOutput{}}
	for _, n := range notifications {
		if !n.Read {
			out.Unread++
		}
		if input.UnreadOnly && n.Read {
			continue
		}
		out.Notifications = append(out.Notifications, notificationToOutput(n))
	}

	return nil, out, nil
}

type MarkNotificationReadInput struct {
	ID  string `json:"id,omitempty" jsonschema:"Notification id, e.g. overdue-<company uuid>"`
	All bool   `json:"all,omitempty" jsonschema:"Mark every notification as read"`
}

type MarkNotificationReadOutput struct {
	Message string `json:"message"`
}

func (h *NotificationHandlers) MarkNotificationRead(_ context.Context, request *mcp.CallToolRequest, input MarkNotificationReadInput) (*mcp.CallToolResult, MarkNotificationReadOutput, error) {
	if input.All {
		if err := db.MarkAllNotificationsRead(h.db); err != nil {
			return nil, MarkNotificationReadOutput{}, fmt.Errorf("failed to mark notifications: %w", err)
		}
		return nil, MarkNotificationReadOutput{Message: "Marked all notifications as read"}, nil
	}

	if input.ID == "" {
		return nil, MarkNotificationReadOutput{}, fmt.Errorf("id is required unless all is set")
	}

	ok, err := db.MarkNotificationRead(h.db, input.ID)
	if err != nil {
		return nil, MarkNotificationReadOutput{}, fmt.Errorf("failed to mark notification: %w", err)
	}
	if !ok {
		return nil, MarkNotificationReadOutput{}, fmt.Errorf("notification not found: %s", input.ID)
	}

	return nil, MarkNotificationReadOutput{Message: fmt.Sprintf("Marked notification %s as read", input.ID)}, nil
}

func notificationToOutput(n models.Notification) NotificationOutput {
	out := NotificationOutput{
		ID:        n.ID,
		Type:      string(n.Kind),
		Title:     n.Title,
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
	if n.CompanyID != uuid.Nil {
		out.CompanyID = n.CompanyID.String()
	}
	return out
}
