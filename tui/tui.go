// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Provides interactive full-screen interface for company cadence and notifications
package tui

import (
	"database/sql"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/harperreed/commtrack/db"
	"github.com/harperreed/commtrack/models"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
	ViewLog
	ViewGraph
	ViewConfirmDelete
)

// Tab is the collection shown in the list view
type Tab int

const (
	TabCompanies Tab = iota
	TabNotifications
	TabMethods
)

var tabNames = []string{"Companies", "Notifications", "Methods"}

// Model is the main bubbletea model
type Model struct {
	db       *sql.DB
	user     *models.User
	now      func() time.Time
	viewMode ViewMode
	tab      Tab

	// List view state
	selectedRow int

	// Detail view state
	selectedID uuid.UUID

	// Companies whose status colouring was switched off with 'h'
	plain map[uuid.UUID]bool

	// Log view state
	formInputs []textinput.Model
	focusIndex int

	// Graph view state
	graphDOT string

	// Result of the last action, shown under the list
	message string

	// UI state
	width  int
	height int
	err    error
}

// NewModel creates a new TUI model. user may be nil when nobody is logged in;
// admin actions are then refused.
func NewModel(database *sql.DB, user *models.User, now func() time.Time) Model {
	if now == nil {
		now = time.Now
	}
	m := Model{
		db:       database,
		user:     user,
		now:      now,
		viewMode: ViewList,
		tab:      TabCompanies,
		plain:    make(map[uuid.UUID]bool),
		width:    80,
		height:   24,
	}
	m.syncNotifications()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	switch m.viewMode {
	case ViewList:
		return m.renderListView()
	case ViewDetail:
		return m.renderDetailView()
	case ViewLog:
		return m.renderLogView()
	case ViewGraph:
		return m.renderGraphView()
	case ViewConfirmDelete:
		return m.renderConfirmDeleteView()
	}
	return ""
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q":
		// q is text while the log form is open
		if m.viewMode != ViewLog {
			return m, tea.Quit
		}
	}

	// Delegate to view-specific handlers
	switch m.viewMode {
	case ViewList:
		return m.handleListKeys(msg)
	case ViewDetail:
		return m.handleDetailKeys(msg)
	case ViewLog:
		return m.handleLogKeys(msg)
	case ViewGraph:
		return m.handleGraphKeys(msg)
	case ViewConfirmDelete:
		return m.handleConfirmDeleteKeys(msg)
	}

	return m, nil
}

// syncNotifications recomputes derived notifications so the list reflects the
// latest communications.
func (m *Model) syncNotifications() {
	if _, err := db.SyncNotifications(m.db, m.now()); err != nil {
		m.err = err
		m.message = "Error: " + err.Error()
	}
}

func (m Model) highlighted(id uuid.UUID) bool {
	return !m.plain[id]
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	statusStyles = map[models.Status]lipgloss.Style{
		models.StatusOverdue:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		models.StatusDue:      lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		models.StatusUpcoming: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		models.StatusNone:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
)
