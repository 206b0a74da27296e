// ABOUTME: Form for logging a communication against the selected company
// ABOUTME: Reads type, date, and notes then refreshes derived notifications
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/harperreed/commtrack/db"
	"github.com/harperreed/commtrack/models"
	"github.com/harperreed/commtrack/status"
)

func (m Model) renderLogView() string {
	var s strings.Builder

	name := ""
	if company, _ := db.GetCompany(m.db, m.selectedID); company != nil {
		name = company.Name
	}

	// Title
	s.WriteString(titleStyle.Render("LOG COMMUNICATION " + strings.ToUpper(name)))
	s.WriteString("\n\n")

	// Form fields
	for i, input := range m.formInputs {
		if i == m.focusIndex {
			s.WriteString("> ")
		} else {
			s.WriteString("  ")
		}
		s.WriteString(input.View())
		s.WriteString("\n")
	}

	if m.message != "" {
		s.WriteString("\n")
		s.WriteString(messageStyle.Render(m.message))
		s.WriteString("\n")
	}

	s.WriteString("\n")

	// Help
	s.WriteString(m.renderLogHelp())

	return s.String()
}

func (m Model) renderLogHelp() string {
	help := []string{
		"Tab: Next field",
		"Enter: Save",
		"Esc: Cancel",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleLogKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.viewMode = ViewList
		m.message = ""
		return m, nil
	case "tab":
		m.focusIndex = (m.focusIndex + 1) % len(m.formInputs)
		m.updateFormFocus()
		return m, nil
	case "enter":
		comm, err := m.saveCommunication()
		if err != nil {
			m.err = err
			m.message = "Error: " + err.Error()
			return m, nil
		}
		m.syncNotifications()
		m.message = fmt.Sprintf("Logged %s on %s", comm.Type, comm.Date.Format(status.DayLayout))
		m.viewMode = ViewDetail
		return m, nil
	}

	// Update current input
	var cmd tea.Cmd
	m.formInputs[m.focusIndex], cmd = m.formInputs[m.focusIndex].Update(msg)
	return m, cmd
}

func (m *Model) initLogForm() {
	inputs := make([]textinput.Model, 3)

	inputs[0] = textinput.New()
	inputs[0].Placeholder = "Type (LinkedIn Post, LinkedIn Message, Email, Phone Call, Other)"
	inputs[0].CharLimit = 30
	inputs[0].Width = 60

	inputs[1] = textinput.New()
	inputs[1].Placeholder = "Date (YYYY-MM-DD)"
	inputs[1].CharLimit = 10
	inputs[1].SetValue(m.now().Format(status.DayLayout))

	inputs[2] = textinput.New()
	inputs[2].Placeholder = "Notes"
	inputs[2].CharLimit = 500

	m.formInputs = inputs
	m.focusIndex = 0
	m.message = ""
	m.updateFormFocus()
}

func (m *Model) updateFormFocus() {
	for i := range m.formInputs {
		if i == m.focusIndex {
			m.formInputs[i].Focus()
		} else {
			m.formInputs[i].Blur()
		}
	}
}

func (m Model) saveCommunication() (*models.Communication, error) {
	typ, err := models.ParseCommunicationType(m.formInputs[0].Value())
	if err != nil {
		return nil, err
	}

	date, err := time.Parse(status.DayLayout, strings.TrimSpace(m.formInputs[1].Value()))
	if err != nil {
		return nil, fmt.Errorf("%w: date must look like 2026-10-18", models.ErrInvalidInput)
	}

	comm := &models.Communication{
		CompanyID: m.selectedID,
		Type:      typ,
		Date:      date,
		Notes:     m.formInputs[2].Value(),
	}
	if err := db.LogCommunication(m.db, comm); err != nil {
		return nil, err
	}
	return comm, nil
}
