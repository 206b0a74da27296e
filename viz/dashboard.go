// ABOUTME: Terminal dashboard statistics and rendering
// ABOUTME: Provides ASCII dashboard for the communication cadence overview
package viz

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/commtrack/db"
	"github.com/harperreed/commtrack/models"
	"github.com/harperreed/commtrack/status"
)

type DashboardStats struct {
	Summary status.Summary

	TotalCommunications int
	UnreadNotifications int

	// Communications per type over the last 30 days
	TypeCounts map[models.CommunicationType]int

	// Recent activity (last 7 days)
	RecentActivity []ActivityItem

	// Needs attention: overdue first, then due today
	Attention []AttentionItem

	Statuses []models.CompanyStatus
}

type ActivityItem struct {
	Date        time.Time
	Description string
}

type AttentionItem struct {
	Name     string
	Status   models.Status
	NextDate time.Time
	DaysLate int
}

func GenerateDashboardStats(database *sql.DB, now time.Time) (*DashboardStats, error) {
	stats := &DashboardStats{
		TypeCounts: make(map[models.CommunicationType]int),
	}

	statuses, err := db.CompanyStatuses(database, now)
	if err != nil {
		return nil, fmt.Errorf("failed to compute statuses: %w", err)
	}
	stats.Statuses = statuses
	stats.Summary = status.Summarize(statuses)

	names := make(map[string]string, len(statuses))
	for _, cs := range statuses {
		names[cs.ID.String()] = cs.Name
	}

	comms, err := db.ListCommunications(database, db.CommunicationFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch communications: %w", err)
	}

	today := status.DateOf(now)
	weekAgo := today.AddDate(0, 0, -7)
	monthAgo := today.AddDate(0, 0, -30)
	for _, comm := range comms {
		name, ok := names[comm.CompanyID.String()]
		if !ok {
			continue
		}
		stats.TotalCommunications++
		if !comm.Date.Before(monthAgo) {
			stats.TypeCounts[comm.Type]++
		}
		if !comm.Date.Before(weekAgo) {
			stats.RecentActivity = append(stats.RecentActivity, ActivityItem{
				Date:        comm.Date,
				Description: fmt.Sprintf("%s with %s", comm.Type, name),
			})
		}
	}

	for _, want := range []models.Status{models.StatusOverdue, models.StatusDue} {
		for _, cs := range statuses {
			if cs.Status != want {
				continue
			}
			stats.Attention = append(stats.Attention, AttentionItem{
				Name:     cs.Name,
				Status:   cs.Status,
				NextDate: *cs.NextDate,
				DaysLate: int(today.Sub(*cs.NextDate).Hours() / 24),
			})
		}
	}

	if _, err := db.SyncNotifications(database, now); err != nil {
		return nil, fmt.Errorf("failed to sync notifications: %w", err)
	}
	stats.UnreadNotifications, err = db.UnreadNotificationCount(database)
	if err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}

	return stats, nil
}

func RenderDashboard(stats *DashboardStats) string {
	var out strings.Builder

	// Header
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  COMMTRACK DASHBOARD\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("CADENCE OVERVIEW\n")
	renderStatusBars(&out, stats.Summary)
	out.WriteString("\n")

	out.WriteString("STATS\n")
	out.WriteString(fmt.Sprintf("  🏢 %d companies  💬 %d communications  🔔 %d unread\n\n",
		stats.Summary.Total, stats.TotalCommunications, stats.UnreadNotifications))

	if len(stats.TypeCounts) > 0 {
		out.WriteString("LAST 30 DAYS\n")
		for _, t := range models.CommunicationTypes() {
			if n := stats.TypeCounts[t]; n > 0 {
				out.WriteString(fmt.Sprintf("  %-17s %d\n", t, n))
			}
		}
		out.WriteString("\n")
	}

	if len(stats.RecentActivity) > 0 {
		out.WriteString("RECENT ACTIVITY\n")
		for _, item := range stats.RecentActivity {
			out.WriteString(fmt.Sprintf("  %s  %s\n", item.Date.Format("Jan 02"), item.Description))
		}
		out.WriteString("\n")
	}

	if len(stats.Attention) > 0 {
		out.WriteString("NEEDS ATTENTION\n")
		for _, item := range stats.Attention {
			if item.Status == models.StatusOverdue {
				out.WriteString(fmt.Sprintf("  ⚠️  %s - overdue by %d days (was %s)\n",
					item.Name, item.DaysLate, item.NextDate.Format(status.DateFormat)))
			} else {
				out.WriteString(fmt.Sprintf("  📅 %s - due today\n", item.Name))
			}
		}
	}

	return out.String()
}

func renderStatusBars(out *strings.Builder, s status.Summary) {
	rows := []struct {
		label string
		count int
	}{
		{"overdue", s.Overdue},
		{"due today", s.Due},
		{"upcoming", s.Upcoming},
		{"no history", s.None},
	}

	// Find max count for scaling
	maxCount := 0
	for _, r := range rows {
		if r.count > maxCount {
			maxCount = r.count
		}
	}
	if maxCount == 0 {
		maxCount = 1
	}

	for _, r := range rows {
		// Calculate bar length (0-10 blocks)
		barLength := (r.count * 10) / maxCount
		bar := strings.Repeat("█", barLength) + strings.Repeat("░", 10-barLength)
		out.WriteString(fmt.Sprintf("  %-11s %s  %2d\n", r.label, bar, r.count))
	}
}
