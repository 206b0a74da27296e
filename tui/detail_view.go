package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/harperreed/commtrack/auth"
	"github.com/harperreed/commtrack/db"
	"github.com/harperreed/commtrack/status"
)

var (
	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(20)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

func (m Model) renderDetailView() string {
	var s strings.Builder

	// Title
	s.WriteString(titleStyle.Render("COMPANY DETAIL"))
	s.WriteString("\n\n")

	s.WriteString(m.renderCompanyDetail())
	s.WriteString("\n\n")

	if m.message != "" {
		s.WriteString(messageStyle.Render(m.message))
		s.WriteString("\n")
	}

	// Help
	s.WriteString(m.renderDetailHelp())

	return s.String()
}

func (m Model) renderCompanyDetail() string {
	cs, err := db.CompanyStatusByID(m.db, m.selectedID, m.now())
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	if cs == nil {
		return "Company not found."
	}

	var s strings.Builder

	s.WriteString(m.renderField("Name", cs.Name))
	s.WriteString(m.renderField("Location", cs.Location))
	s.WriteString(m.renderField("LinkedIn", cs.LinkedInProfile))
	s.WriteString(m.renderField("Emails", strings.Join(cs.Emails, ", ")))
	s.WriteString(m.renderField("Phone Numbers", strings.Join(cs.PhoneNumbers, ", ")))
	s.WriteString(m.renderField("Periodicity", fmt.Sprintf("every %d days", cs.Periodicity)))
	s.WriteString(m.renderField("Comments", cs.Comments))

	statusText := string(cs.Status)
	if m.highlighted(cs.ID) {
		statusText = statusStyles[cs.Status].Render(statusText)
	}
	s.WriteString(m.renderField("Status", statusText))
	s.WriteString(m.renderField("Next Communication", nextDate(*cs)))

	// Recent communications
	s.WriteString("\n")
	s.WriteString(lipgloss.NewStyle().Bold(true).Render("RECENT COMMUNICATIONS"))
	s.WriteString("\n")

	recent, _ := db.RecentCommunications(m.db, m.selectedID, 5)
	if len(recent) == 0 {
		s.WriteString("  none logged\n")
	}
	for _, comm := range recent {
		line := fmt.Sprintf("  • %s %s", comm.Date.Format(status.DayLayout), comm.Type)
		if comm.Notes != "" {
			line += " - " + comm.Notes
		}
		s.WriteString(line + "\n")
	}

	return s.String()
}

func (m Model) renderField(label, value string) string {
	if value == "" {
		value = "-"
	}
	return fmt.Sprintf("%s %s\n",
		fieldLabelStyle.Render(label+":"),
		fieldValueStyle.Render(value))
}

func (m Model) renderDetailHelp() string {
	help := []string{
		"Esc: Back",
		"l: Log communication",
		"h: Toggle highlight",
		"d: Delete",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.viewMode = ViewList
		m.message = ""
	case "l":
		m.initLogForm()
		m.viewMode = ViewLog
	case "h":
		m.plain[m.selectedID] = !m.plain[m.selectedID]
	case "d":
		if err := auth.RequireAdmin(m.user); err != nil {
			m.message = "Only administrators can delete companies"
		} else {
			m.viewMode = ViewConfirmDelete
		}
	}

	return m, nil
}
