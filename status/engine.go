// ABOUTME: Cadence status engine for tracked companies
// ABOUTME: Computes latest communication, next expected date, classification, and notifications
package status

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/commtrack/models"
)

// DateFormat is how missed dates are written in notification messages.
const DateFormat = "January 2, 2006"

// DayLayout is the compact calendar date form used in tables and input.
const DayLayout = "2006-01-02"

// DateOf returns the calendar date of t, read in t's own location, as UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// LatestCommunication returns the company's communication with the greatest date.
// Ties go to the highest ID, i.e. the one logged last.
func LatestCommunication(companyID uuid.UUID, comms []models.Communication) (*models.Communication, bool) {
	var latest *models.Communication
	for i := range comms {
		c := &comms[i]
		if c.CompanyID != companyID {
			continue
		}
		if latest == nil {
			latest = c
			continue
		}
		cd, ld := DateOf(c.Date), DateOf(latest.Date)
		if cd.After(ld) || (cd.Equal(ld) && c.ID.Compare(latest.ID) > 0) {
			latest = c
		}
	}
	if latest == nil {
		return nil, false
	}
	out := *latest
	return &out, true
}

// NextExpectedDate adds the periodicity in calendar days to the latest communication's date.
// It returns nil when there is no history.
func NextExpectedDate(periodicity int, latest *models.Communication) *time.Time {
	if latest == nil {
		return nil
	}
	next := DateOf(latest.Date).AddDate(0, 0, periodicity)
	return &next
}

// Classify compares the next expected date to today, by date only.
func Classify(next *time.Time, today time.Time) models.Status {
	if next == nil {
		return models.StatusNone
	}
	n, t := DateOf(*next), DateOf(today)
	switch {
	case n.Before(t):
		return models.StatusOverdue
	case n.Equal(t):
		return models.StatusDue
	default:
		return models.StatusUpcoming
	}
}

// Evaluate derives the cadence status of one company.
func Evaluate(company models.Company, comms []models.Communication, today time.Time) models.CompanyStatus {
	latest, _ := LatestCommunication(company.ID, comms)
	next := NextExpectedDate(company.Periodicity, latest)
	return models.CompanyStatus{
		Company:  company,
		Latest:   latest,
		NextDate: next,
		Status:   Classify(next, today),
	}
}

// EvaluateAll evaluates every company, preserving the order of companies.
func EvaluateAll(companies []models.Company, comms []models.Communication, today time.Time) []models.CompanyStatus {
	statuses := make([]models.CompanyStatus, 0, len(companies))
	for _, company := range companies {
		statuses = append(statuses, Evaluate(company, comms, today))
	}
	return statuses
}

// SynthesizeNotifications emits one overdue or due notification per company that needs one.
// The result depends only on its inputs, so repeated calls agree.
func SynthesizeNotifications(companies []models.Company, comms []models.Communication, now time.Time) []models.Notification {
	var notifications []models.Notification
	for _, cs := range EvaluateAll(companies, comms, now) {
		switch cs.Status {
		case models.StatusOverdue:
			notifications = append(notifications, models.Notification{
				ID:    models.NotificationKey(models.NotificationOverdue, cs.ID),
				Kind:  models.NotificationOverdue,
				Title: "Overdue Communication",
				Message: fmt.Sprintf("Communication with %s is overdue. Last scheduled date was %s",
					cs.Name, cs.NextDate.Format(DateFormat)),
				CompanyID: cs.ID,
				CreatedAt: now,
			})
		case models.StatusDue:
			notifications = append(notifications, models.Notification{
				ID:        models.NotificationKey(models.NotificationDue, cs.ID),
				Kind:      models.NotificationDue,
				Title:     "Communication Due Today",
				Message:   fmt.Sprintf("Communication with %s is due today", cs.Name),
				CompanyID: cs.ID,
				CreatedAt: now,
			})
		}
	}
	return notifications
}

// MergeNotifications replaces derived notifications with a fresh computation while keeping
// the read flag and creation time of any that were already known. Info notifications are
// not derived and carry over unchanged.
func MergeNotifications(prior, fresh []models.Notification) []models.Notification {
	known := make(map[string]models.Notification, len(prior))
	for _, n := range prior {
		known[n.ID] = n
	}

	merged := make([]models.Notification, 0, len(fresh)+len(prior))
	for _, n := range fresh {
		if old, ok := known[n.ID]; ok && old.Kind == n.Kind {
			n.Read = old.Read
			n.CreatedAt = old.CreatedAt
		}
		merged = append(merged, n)
	}
	for _, n := range prior {
		if n.Kind == models.NotificationInfo {
			merged = append(merged, n)
		}
	}
	return merged
}

// Summary counts companies per status.
type Summary struct {
	Total    int `json:"total"`
	Overdue  int `json:"overdue"`
	Due      int `json:"due"`
	Upcoming int `json:"upcoming"`
	None     int `json:"none"`
}

// Summarize tallies statuses; companies never contacted count as None.
func Summarize(statuses []models.CompanyStatus) Summary {
	s := Summary{Total: len(statuses)}
	for _, cs := range statuses {
		switch cs.Status {
		case models.StatusOverdue:
			s.Overdue++
		case models.StatusDue:
			s.Due++
		case models.StatusUpcoming:
			s.Upcoming++
		default:
			s.None++
		}
	}
	return s
}
