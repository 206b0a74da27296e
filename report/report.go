// ABOUTME: Monthly communication reports
// ABOUTME: Aggregates a month of communications by type and company and exports CSV

package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/commtrack/models"
	"github.com/harperreed/commtrack/status"
)

// MonthLayout is the format of month selectors ("2026-10").
const MonthLayout = "2006-01"

type Row struct {
	Date        time.Time                `json:"date"`
	CompanyID   uuid.UUID                `json:"company_id"`
	CompanyName string                   `json:"company"`
	Type        models.CommunicationType `json:"type"`
	Notes       string                   `json:"notes"`
}

type TypeCount struct {
	Type  models.CommunicationType `json:"type"`
	Count int                      `json:"count"`
}

type CompanyCount struct {
	CompanyID uuid.UUID `json:"company_id"`
	Name      string    `json:"name"`
	Count     int       `json:"count"`
}

type Report struct {
	Month     time.Time      `json:"month"`
	CompanyID *uuid.UUID     `json:"company_id,omitempty"`
	Total     int            `json:"total"`
	Rows      []Row          `json:"rows"`
	ByType    []TypeCount    `json:"by_type"`
	ByCompany []CompanyCount `json:"by_company"`
}

// ParseMonth reads "YYYY-MM" as the first day of that month, UTC.
func ParseMonth(s string) (time.Time, error) {
	m, err := time.Parse(MonthLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: month must look like 2026-10, got %q", models.ErrInvalidInput, s)
	}
	return m, nil
}

// MonthOf returns the first day of t's month.
func MonthOf(t time.Time) time.Time {
	d := status.DateOf(t)
	return d.AddDate(0, 0, 1-d.Day())
}

// Build collects the month's communications, optionally for a single company.
// Communications whose company no longer exists are left out.
func Build(companies []models.Company, comms []models.Communication, month time.Time, companyID *uuid.UUID) *Report {
	start := MonthOf(month)
	end := start.AddDate(0, 1, 0)

	names := make(map[uuid.UUID]string, len(companies))
	for _, c := range companies {
		names[c.ID] = c.Name
	}

	r := &Report{Month: start, CompanyID: companyID}
	for _, comm := range comms {
		name, ok := names[comm.CompanyID]
		if !ok {
			continue
		}
		if companyID != nil && comm.CompanyID != *companyID {
			continue
		}
		d := status.DateOf(comm.Date)
		if d.Before(start) || !d.Before(end) {
			continue
		}
		r.Rows = append(r.Rows, Row{
			Date:        d,
			CompanyID:   comm.CompanyID,
			CompanyName: name,
			Type:        comm.Type,
			Notes:       comm.Notes,
		})
	}

	sort.SliceStable(r.Rows, func(i, j int) bool { return r.Rows[i].Date.After(r.Rows[j].Date) })
	r.Total = len(r.Rows)

	byType := make(map[models.CommunicationType]int)
	byCompany := make(map[uuid.UUID]int)
	for _, row := range r.Rows {
		byType[row.Type]++
		byCompany[row.CompanyID]++
	}
	for _, t := range models.CommunicationTypes() {
		r.ByType = append(r.ByType, TypeCount{Type: t, Count: byType[t]})
	}
	for _, c := range companies {
		r.ByCompany = append(r.ByCompany, CompanyCount{CompanyID: c.ID, Name: c.Name, Count: byCompany[c.ID]})
	}
	return r
}

// FileName is the suggested download name for a month's CSV export.
func FileName(month time.Time) string {
	return fmt.Sprintf("communications-report-%s.csv", MonthOf(month).Format(MonthLayout))
}
