// ABOUTME: Tests for the TUI model
// ABOUTME: Drives key presses against seeded data and checks views and stored state
package tui

import (
	"database/sql"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/harperreed/commtrack/db"
	"github.com/harperreed/commtrack/models"
	"github.com/harperreed/commtrack/seed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

var (
	admin   = &models.User{Name: "Admin", Email: "admin@example.com", Role: models.RoleAdmin}
	regular = &models.User{Name: "User", Email: "user@example.com", Role: models.RoleUser}
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDatabase()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, seed.Load(database, today))
	return database
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(Model)
	}
	return m
}

func newModel(t *testing.T, user *models.User) (Model, *sql.DB) {
	database := setupTestDB(t)
	return NewModel(database, user, func() time.Time { return today }), database
}

func TestCompaniesTab(t *testing.T) {
	m, _ := newModel(t, regular)

	view := m.View()
	assert.Contains(t, view, "COMMTRACK")
	assert.Contains(t, view, "Accenture Global Solutions")
	assert.Contains(t, view, "overdue")
	assert.Contains(t, view, "user@example.com")
}

func TestNewModelSyncsNotifications(t *testing.T) {
	_, database := newModel(t, regular)

	notifications, err := db.ListNotifications(database)
	require.NoError(t, err)
	// three overdue, two due, and the welcome notice
	assert.Len(t, notifications, 6)
}

func TestEnterOpensDetail(t *testing.T) {
	m, _ := newModel(t, regular)

	m = press(t, m, "enter")
	require.Equal(t, ViewDetail, m.viewMode)

	view := m.View()
	assert.Contains(t, view, "COMPANY DETAIL")
	assert.Contains(t, view, "RECENT COMMUNICATIONS")
	assert.Contains(t, view, "Followed up on partnership proposal")
	assert.Contains(t, view, "every 14 days")

	m = press(t, m, "esc")
	assert.Equal(t, ViewList, m.viewMode)
}

func TestHighlightToggle(t *testing.T) {
	m, _ := newModel(t, regular)

	m = press(t, m, "down", "h")
	require.NotEqual(t, "", m.selectedID.String())
	assert.False(t, m.highlighted(m.selectedID))

	m = press(t, m, "h")
	assert.True(t, m.highlighted(m.selectedID))
}

func TestLogCommunicationClearsDue(t *testing.T) {
	m, database := newModel(t, regular)

	m = press(t, m, "l")
	require.Equal(t, ViewLog, m.viewMode)
	assert.Equal(t, "2026-10-18", m.formInputs[1].Value())

	m.formInputs[0].SetValue("phone call")
	m.formInputs[2].SetValue("checked in")
	m = press(t, m, "enter")
	require.Equal(t, ViewDetail, m.viewMode, m.message)
	assert.Contains(t, m.message, "Logged Phone Call")

	cs, err := db.CompanyStatusByID(database, m.selectedID, today)
	require.NoError(t, err)
	assert.Equal(t, models.StatusUpcoming, cs.Status)

	notifications, err := db.ListNotifications(database)
	require.NoError(t, err)
	for _, n := range notifications {
		assert.NotEqual(t, models.NotificationKey(models.NotificationDue, m.selectedID), n.ID)
	}
}

func TestLogFormRejectsBadInput(t *testing.T) {
	m, _ := newModel(t, regular)

	m = press(t, m, "l")
	m.formInputs[0].SetValue("carrier pigeon")
	m = press(t, m, "enter")
	assert.Equal(t, ViewLog, m.viewMode)
	assert.Contains(t, m.message, "unknown communication type")

	// q is typed into the form rather than quitting
	m = press(t, m, "q")
	assert.Equal(t, ViewLog, m.viewMode)
	assert.Equal(t, "carrier pigeonq", m.formInputs[0].Value())
}

func TestNotificationsTab(t *testing.T) {
	m, database := newModel(t, regular)

	m = press(t, m, "tab")
	require.Equal(t, TabNotifications, m.tab)
	assert.Contains(t, m.View(), "Overdue Communication")

	before, err := db.UnreadNotificationCount(database)
	require.NoError(t, err)

	m = press(t, m, "r")
	after, err := db.UnreadNotificationCount(database)
	require.NoError(t, err)
	assert.Equal(t, before-1, after)

	m = press(t, m, "a")
	after, err = db.UnreadNotificationCount(database)
	require.NoError(t, err)
	assert.Zero(t, after)
	assert.Contains(t, m.View(), "All notifications marked as read")
}

func TestMethodsTab(t *testing.T) {
	m, _ := newModel(t, regular)

	m = press(t, m, "tab", "tab")
	require.Equal(t, TabMethods, m.tab)
	view := m.View()
	assert.Contains(t, view, "LinkedIn Message")
	assert.Contains(t, view, "Phone Call")
}

func TestDeleteRequiresAdmin(t *testing.T) {
	m, database := newModel(t, regular)

	m = press(t, m, "d")
	assert.Equal(t, ViewList, m.viewMode)
	assert.Contains(t, m.message, "Only administrators")

	companies, err := db.ListCompanies(database)
	require.NoError(t, err)
	assert.Len(t, companies, 9)
}

func TestAdminDeletesCompany(t *testing.T) {
	m, database := newModel(t, admin)

	m = press(t, m, "d")
	require.Equal(t, ViewConfirmDelete, m.viewMode)
	assert.Contains(t, m.View(), "Accenture Global Solutions")

	m = press(t, m, "y")
	assert.Equal(t, ViewList, m.viewMode)
	assert.Equal(t, "Successfully deleted", m.message)

	companies, err := db.ListCompanies(database)
	require.NoError(t, err)
	assert.Len(t, companies, 8)
}

func TestQuit(t *testing.T) {
	m, _ := newModel(t, nil)
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
