// ABOUTME: Month calendar of past communications and next expected dates
// ABOUTME: Renders a terminal month grid with markers and an event list
package viz

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/commtrack/models"
	"github.com/harperreed/commtrack/status"
)

type EventKind string

const (
	EventCommunication EventKind = "communication"
	EventScheduled     EventKind = "scheduled"
)

type CalendarEvent struct {
	Date        time.Time                `json:"date"`
	Kind        EventKind                `json:"kind"`
	CompanyID   uuid.UUID                `json:"company_id"`
	CompanyName string                   `json:"company"`
	Type        models.CommunicationType `json:"type"`
	Notes       string                   `json:"notes,omitempty"`
	Due         bool                     `json:"due"`
}

// Title reads "<company> - <type>", or "<company> - Due" for today's scheduled contact.
func (e CalendarEvent) Title() string {
	if e.Due {
		return e.CompanyName + " - Due"
	}
	return fmt.Sprintf("%s - %s", e.CompanyName, e.Type)
}

// CalendarEvents lists the month's logged communications plus each company's next
// expected date when it falls in the month.
func CalendarEvents(companies []models.Company, comms []models.Communication, month, today time.Time) []CalendarEvent {
	start := status.DateOf(month).AddDate(0, 0, 1-month.Day())
	end := start.AddDate(0, 1, 0)
	inMonth := func(d time.Time) bool { return !d.Before(start) && d.Before(end) }

	names := make(map[uuid.UUID]string, len(companies))
	for _, c := range companies {
		names[c.ID] = c.Name
	}

	var events []CalendarEvent
	for _, comm := range comms {
		name, ok := names[comm.CompanyID]
		if !ok || !inMonth(status.DateOf(comm.Date)) {
			continue
		}
		events = append(events, CalendarEvent{
			Date:        status.DateOf(comm.Date),
			Kind:        EventCommunication,
			CompanyID:   comm.CompanyID,
			CompanyName: name,
			Type:        comm.Type,
			Notes:       comm.Notes,
		})
	}

	for _, company := range companies {
		cs := status.Evaluate(company, comms, today)
		if cs.NextDate == nil || !inMonth(*cs.NextDate) {
			continue
		}
		events = append(events, CalendarEvent{
			Date:        *cs.NextDate,
			Kind:        EventScheduled,
			CompanyID:   company.ID,
			CompanyName: company.Name,
			Type:        cs.Latest.Type,
			Due:         cs.Status == models.StatusDue,
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Date.Equal(events[j].Date) {
			return events[i].Date.Before(events[j].Date)
		}
		return events[i].Kind < events[j].Kind
	})
	return events
}

// RenderCalendar draws the month grid (weeks start on Sunday). Days with logged
// communications are marked *, scheduled contacts +, and today's due contacts !.
func RenderCalendar(month time.Time, events []CalendarEvent, today time.Time) string {
	start := status.DateOf(month).AddDate(0, 0, 1-month.Day())
	days := start.AddDate(0, 1, -1).Day()

	marks := make(map[int]string)
	for _, e := range events {
		mark := "*"
		switch {
		case e.Due:
			mark = "!"
		case e.Kind == EventScheduled:
			mark = "+"
		}
		if current := marks[e.Date.Day()]; current != "!" {
			marks[e.Date.Day()] = mark
		}
	}

	var out strings.Builder
	out.WriteString(fmt.Sprintf("  %s\n", start.Format("January 2006")))
	out.WriteString("  Sun  Mon  Tue  Wed  Thu  Fri  Sat\n")

	out.WriteString("  ")
	out.WriteString(strings.Repeat("     ", int(start.Weekday())))
	todayDate := status.DateOf(today)
	for d := 1; d <= days; d++ {
		date := start.AddDate(0, 0, d-1)
		cell := fmt.Sprintf(" %2d ", d)
		if date.Equal(todayDate) {
			cell = fmt.Sprintf("[%2d]", d)
		}
		m := marks[d]
		if m == "" {
			m = " "
		}
		out.WriteString(cell + m)
		if date.Weekday() == time.Saturday && d != days {
			out.WriteString("\n  ")
		}
	}
	out.WriteString("\n\n")

	for _, e := range events {
		out.WriteString(fmt.Sprintf("  %s  %s\n", e.Date.Format("Jan 02"), e.Title()))
	}
	return out.String()
}
