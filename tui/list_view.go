package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/harperreed/commtrack/auth"
	"github.com/harperreed/commtrack/db"
	"github.com/harperreed/commtrack/models"
	"github.com/harperreed/commtrack/status"
)

func (m Model) renderListView() string {
	var s strings.Builder

	// Title
	s.WriteString(titleStyle.Render("COMMTRACK"))
	s.WriteString("\n")
	s.WriteString(m.renderHeaderLine())
	s.WriteString("\n\n")

	// Tabs
	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	// Table
	s.WriteString(m.renderTable())
	s.WriteString("\n")

	if m.message != "" {
		s.WriteString("\n")
		s.WriteString(messageStyle.Render(m.message))
		s.WriteString("\n")
	}

	// Help
	s.WriteString(m.renderListHelp())

	return s.String()
}

func (m Model) renderHeaderLine() string {
	who := "not logged in"
	if m.user != nil {
		who = fmt.Sprintf("%s (%s)", m.user.Email, m.user.Role)
	}
	return fmt.Sprintf("%s • %s", m.now().Format(status.DayLayout), who)
}

func (m Model) renderTabs() string {
	var rendered []string

	for i, tab := range tabNames {
		if Tab(i) == m.tab {
			rendered = append(rendered, tabActiveStyle.Render(tab))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(tab))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) renderTable() string {
	switch m.tab {
	case TabCompanies:
		return m.renderCompaniesTable()
	case TabNotifications:
		return m.renderNotificationsList()
	case TabMethods:
		return m.renderMethodsTable()
	}
	return ""
}

func cursor(selected bool) string {
	if selected {
		return "> "
	}
	return "  "
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}

func lastCommunication(cs models.CompanyStatus) string {
	if cs.Latest == nil {
		return "-"
	}
	return fmt.Sprintf("%s %s", cs.Latest.Date.Format(status.DayLayout), cs.Latest.Type)
}

func nextDate(cs models.CompanyStatus) string {
	if cs.NextDate == nil {
		return "-"
	}
	return cs.NextDate.Format(status.DayLayout)
}

// renderCompaniesTable draws rows by hand so each one can carry its status colour.
func (m Model) renderCompaniesTable() string {
	statuses, err := db.CompanyStatuses(m.db, m.now())
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	if len(statuses) == 0 {
		return "No companies yet."
	}

	const rowFormat = "%-28s %-18s %-30s %-11s %-9s"
	var s strings.Builder
	s.WriteString(lipgloss.NewStyle().Bold(true).Render(
		"  " + fmt.Sprintf(rowFormat, "Company", "Location", "Last communication", "Next", "Status")))
	s.WriteString("\n")

	for i, cs := range statuses {
		line := fmt.Sprintf(rowFormat,
			truncate(cs.Name, 28),
			truncate(cs.Location, 18),
			truncate(lastCommunication(cs), 30),
			nextDate(cs),
			cs.Status)
		if m.highlighted(cs.ID) {
			line = statusStyles[cs.Status].Render(line)
		}
		s.WriteString(cursor(i == m.selectedRow))
		s.WriteString(line)
		s.WriteString("\n")
	}

	return s.String()
}

func (m Model) renderNotificationsList() string {
	notifications, err := db.ListNotifications(m.db)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	if len(notifications) == 0 {
		return "No notifications."
	}

	unreadStyle := lipgloss.NewStyle().Bold(true)
	var s strings.Builder
	for i, n := range notifications {
		mark := "○"
		text := fmt.Sprintf("%s: %s", n.Title, n.Message)
		if !n.Read {
			mark = "●"
			text = unreadStyle.Render(text)
		}
		s.WriteString(fmt.Sprintf("%s%s %s\n", cursor(i == m.selectedRow), mark, text))
	}
	return s.String()
}

func (m Model) renderMethodsTable() string {
	methods, err := db.ListMethods(m.db)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}

	columns := []table.Column{
		{Title: "#", Width: 3},
		{Title: "Method", Width: 20},
		{Title: "Mandatory", Width: 10},
		{Title: "Description", Width: 40},
	}

	var rows []table.Row
	for _, method := range methods {
		mandatory := ""
		if method.Mandatory {
			mandatory = "yes"
		}
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", method.Sequence),
			method.Name,
			mandatory,
			method.Description,
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(len(rows)+1),
	)

	if m.selectedRow < len(rows) {
		t.SetCursor(m.selectedRow)
	}

	return t.View()
}

func (m Model) renderListHelp() string {
	help := []string{"↑/↓: Navigate", "Tab: Switch tabs"}
	switch m.tab {
	case TabCompanies:
		help = append(help, "Enter: Details", "l: Log communication", "h: Toggle highlight", "g: Graph", "d: Delete")
	case TabNotifications:
		help = append(help, "r: Mark read", "a: Mark all read")
	}
	help = append(help, "q: Quit")
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) rowCount() int {
	switch m.tab {
	case TabCompanies:
		companies, _ := db.ListCompanies(m.db)
		return len(companies)
	case TabNotifications:
		notifications, _ := db.ListNotifications(m.db)
		return len(notifications)
	case TabMethods:
		methods, _ := db.ListMethods(m.db)
		return len(methods)
	}
	return 0
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		if m.selectedRow < m.rowCount()-1 {
			m.selectedRow++
		}
	case "tab":
		m.tab = (m.tab + 1) % Tab(len(tabNames))
		m.selectedRow = 0
		m.message = ""
		if m.tab == TabNotifications {
			m.syncNotifications()
		}
	case "shift+tab":
		m.tab = (m.tab + Tab(len(tabNames)) - 1) % Tab(len(tabNames))
		m.selectedRow = 0
		m.message = ""
		if m.tab == TabNotifications {
			m.syncNotifications()
		}
	}

	switch m.tab {
	case TabCompanies:
		return m.handleCompanyKeys(msg)
	case TabNotifications:
		return m.handleNotificationKeys(msg)
	}
	return m, nil
}

func (m Model) handleCompanyKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if m.selectCompany() {
			m.viewMode = ViewDetail
		}
	case "h":
		if m.selectCompany() {
			m.plain[m.selectedID] = !m.plain[m.selectedID]
		}
	case "l":
		if m.selectCompany() {
			m.initLogForm()
			m.viewMode = ViewLog
		}
	case "g":
		if err := m.generateGraph(); err != nil {
			m.err = err
			m.message = "Error: " + err.Error()
		} else {
			m.viewMode = ViewGraph
		}
	case "d":
		if err := auth.RequireAdmin(m.user); err != nil {
			m.message = "Only administrators can delete companies"
		} else if m.selectCompany() {
			m.viewMode = ViewConfirmDelete
		}
	}
	return m, nil
}

func (m Model) handleNotificationKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "r":
		notifications, err := db.ListNotifications(m.db)
		if err != nil || m.selectedRow >= len(notifications) {
			return m, nil
		}
		if _, err := db.MarkNotificationRead(m.db, notifications[m.selectedRow].ID); err != nil {
			m.err = err
			m.message = "Error: " + err.Error()
		}
	case "a":
		if err := db.MarkAllNotificationsRead(m.db); err != nil {
			m.err = err
			m.message = "Error: " + err.Error()
		} else {
			m.message = "All notifications marked as read"
		}
	}
	return m, nil
}

// selectCompany records the company under the cursor and reports whether there is one.
func (m *Model) selectCompany() bool {
	companies, err := db.ListCompanies(m.db)
	if err != nil || m.selectedRow >= len(companies) {
		return false
	}
	m.selectedID = companies[m.selectedRow].ID
	return true
}
