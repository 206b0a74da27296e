// ABOUTME: Tests for dashboard, calendar, and cadence graph output
// ABOUTME: Uses seeded in-memory databases and fixed dates
package viz

import (
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/commtrack/db"
	"github.com/harperreed/commtrack/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDatabase()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	late := &models.Company{Name: "Late Co", Periodicity: 7}
	due := &models.Company{Name: "Due Co", Periodicity: 14}
	quiet := &models.Company{Name: "Quiet Co", Periodicity: 30}
	for _, c := range []*models.Company{late, due, quiet} {
		require.NoError(t, db.CreateCompany(database, c))
	}
	require.NoError(t, db.ReplaceMethods(database, []models.CommunicationMethod{
		{Name: "Email", Mandatory: true},
		{Name: "Phone Call"},
	}))
	for _, c := range []models.Communication{
		{CompanyID: late.ID, Type: models.CommunicationEmail, Date: today.AddDate(0, 0, -10)},
		{CompanyID: due.ID, Type: models.CommunicationPhoneCall, Date: today.AddDate(0, 0, -14)},
	} {
		c := c
		require.NoError(t, db.LogCommunication(database, &c))
	}
	return database
}

func TestGenerateDashboardStats(t *testing.T) {
	database := setupTestDB(t)

	stats, err := GenerateDashboardStats(database, today)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Summary.Total)
	assert.Equal(t, 1, stats.Summary.Overdue)
	assert.Equal(t, 1, stats.Summary.Due)
	assert.Equal(t, 1, stats.Summary.None)
	assert.Equal(t, 2, stats.TotalCommunications)
	assert.Equal(t, 2, stats.UnreadNotifications)
	assert.Empty(t, stats.RecentActivity, "nothing logged in the last week")

	require.Len(t, stats.Attention, 2)
	assert.Equal(t, "Late Co", stats.Attention[0].Name)
	assert.Equal(t, 3, stats.Attention[0].DaysLate)
	assert.Equal(t, "Due Co", stats.Attention[1].Name)

	out := RenderDashboard(stats)
	assert.Contains(t, out, "COMMTRACK DASHBOARD")
	assert.Contains(t, out, "Late Co - overdue by 3 days (was October 15, 2026)")
	assert.Contains(t, out, "Due Co - due today")
}

func TestCalendarEvents(t *testing.T) {
	a := models.Company{ID: uuid.New(), Name: "Acme", Periodicity: 7}
	b := models.Company{ID: uuid.New(), Name: "Beta", Periodicity: 14}
	comms := []models.Communication{
		{CompanyID: a.ID, Type: models.CommunicationEmail, Date: time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC)},
		{CompanyID: b.ID, Type: models.CommunicationOther, Date: time.Date(2026, 10, 4, 0, 0, 0, 0, time.UTC)},
		{CompanyID: uuid.New(), Type: models.CommunicationEmail, Date: time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC)},
	}

	events := CalendarEvents([]models.Company{a, b}, comms, today, today)
	require.Len(t, events, 4)

	assert.Equal(t, EventCommunication, events[0].Kind)
	assert.Equal(t, "Acme - Email", events[0].Title())

	// Acme is next expected Oct 9, Beta Oct 18 which is today.
	assert.Equal(t, EventScheduled, events[2].Kind)
	assert.Equal(t, 9, events[2].Date.Day())
	assert.False(t, events[2].Due)
	assert.True(t, events[3].Due)
	assert.Equal(t, "Beta - Due", events[3].Title())
}

func TestRenderCalendar(t *testing.T) {
	a := models.Company{ID: uuid.New(), Name: "Acme", Periodicity: 7}
	comms := []models.Communication{
		{CompanyID: a.ID, Type: models.CommunicationEmail, Date: time.Date(2026, 10, 11, 0, 0, 0, 0, time.UTC)},
	}
	events := CalendarEvents([]models.Company{a}, comms, today, today)

	out := RenderCalendar(today, events, today)
	assert.True(t, strings.HasPrefix(out, "  October 2026\n"))
	assert.Contains(t, out, "[18]!")
	assert.Contains(t, out, " 11 *")
	assert.Contains(t, out, "Oct 18  Acme - Due")
}

func TestGenerateCadenceGraph(t *testing.T) {
	database := setupTestDB(t)

	dot, err := NewGraphGenerator(database).GenerateCadenceGraph(today)
	require.NoError(t, err)
	assert.Contains(t, dot, "Late Co")
	assert.Contains(t, dot, "1. Email")
	assert.Contains(t, dot, "lightcoral")
}
