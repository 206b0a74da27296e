// ABOUTME: Delete confirmation view for TUI
// ABOUTME: Handles admin deletion of a company behind a confirmation dialog
package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/harperreed/commtrack/auth"
	"github.com/harperreed/commtrack/db"
	"github.com/harperreed/commtrack/models"
)

var (
	confirmBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("9")).
			Padding(1, 2).
			Width(60).
			Align(lipgloss.Center)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	confirmButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("9")).
				Padding(0, 2).
				MarginRight(2)

	cancelButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("8")).
				Padding(0, 2)
)

func (m Model) renderConfirmDeleteView() string {
	company, err := db.GetCompany(m.db, m.selectedID)
	if err != nil {
		return fmt.Sprintf("Error loading company: %v", err)
	}
	if company == nil {
		return "Company not found."
	}

	title := warningStyle.Render("⚠  DELETE CONFIRMATION  ⚠")
	message := "Are you sure you want to delete this company?"
	entityInfo := fmt.Sprintf("\nCOMPANY: %s\n", company.Name)
	warning := "\nIts communications stay in the log but no longer count.\nThis action cannot be undone!"

	buttons := lipgloss.JoinHorizontal(
		lipgloss.Left,
		confirmButtonStyle.Render("Yes, Delete (y)"),
		cancelButtonStyle.Render("Cancel (n/esc)"),
	)

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		"",
		message,
		entityInfo,
		warning,
		"",
		buttons,
	)

	box := confirmBoxStyle.Render(content)

	// Center the box on screen
	dialog := lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		box,
	)

	return dialog
}

func (m Model) handleConfirmDeleteKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		err := m.performDelete()
		if err != nil {
			m.err = err
			m.message = "Error: " + err.Error()
		} else {
			m.message = "Successfully deleted"
			m.selectedRow = 0
			m.syncNotifications()
		}
		m.viewMode = ViewList
	case "n", "N", "esc":
		// Cancel delete
		m.viewMode = ViewDetail
	}

	return m, nil
}

func (m Model) performDelete() error {
	if err := auth.RequireAdmin(m.user); err != nil {
		return err
	}

	ok, err := db.DeleteCompany(m.db, m.selectedID)
	if err != nil {
		return err
	}
	if !ok {
		return models.ErrNotFound
	}
	return nil
}
