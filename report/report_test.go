// ABOUTME: Tests for monthly reports and CSV export
// ABOUTME: Includes the quoting round trip through encoding/csv

package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/commtrack/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fixture() ([]models.Company, []models.Communication) {
	acme := models.Company{ID: uuid.New(), Name: "Acme", Periodicity: 7}
	globex := models.Company{ID: uuid.New(), Name: "Globex", Periodicity: 14}
	comms := []models.Communication{
		{CompanyID: acme.ID, Type: models.CommunicationEmail, Date: day(2026, 10, 3), Notes: "first"},
		{CompanyID: globex.ID, Type: models.CommunicationPhoneCall, Date: day(2026, 10, 20)},
		{CompanyID: acme.ID, Type: models.CommunicationEmail, Date: day(2026, 10, 31), Notes: "last day"},
		{CompanyID: acme.ID, Type: models.CommunicationOther, Date: day(2026, 11, 1)},
		{CompanyID: acme.ID, Type: models.CommunicationOther, Date: day(2026, 9, 30)},
		{CompanyID: uuid.New(), Type: models.CommunicationEmail, Date: day(2026, 10, 10)},
	}
	return []models.Company{acme, globex}, comms
}

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("2026-10")
	require.NoError(t, err)
	assert.Equal(t, day(2026, 10, 1), m)

	_, err = ParseMonth("October")
	assert.True(t, errors.Is(err, models.ErrInvalidInput))
}

func TestBuild(t *testing.T) {
	companies, comms := fixture()
	r := Build(companies, comms, day(2026, 10, 15), nil)

	assert.Equal(t, day(2026, 10, 1), r.Month)
	require.Equal(t, 3, r.Total, "orphans and other months are excluded")
	assert.Equal(t, day(2026, 10, 31), r.Rows[0].Date, "newest first")
	assert.Equal(t, day(2026, 10, 3), r.Rows[2].Date)

	require.Len(t, r.ByType, 5)
	assert.Equal(t, TypeCount{Type: models.CommunicationLinkedInPost, Count: 0}, r.ByType[0])
	assert.Equal(t, TypeCount{Type: models.CommunicationEmail, Count: 2}, r.ByType[2])
	assert.Equal(t, TypeCount{Type: models.CommunicationPhoneCall, Count: 1}, r.ByType[3])

	require.Len(t, r.ByCompany, 2)
	assert.Equal(t, 2, r.ByCompany[0].Count)
	assert.Equal(t, 1, r.ByCompany[1].Count)
}

func TestBuildForOneCompany(t *testing.T) {
	companies, comms := fixture()
	r := Build(companies, comms, day(2026, 10, 1), &companies[1].ID)

	require.Equal(t, 1, r.Total)
	assert.Equal(t, "Globex", r.Rows[0].CompanyName)
}

func TestWriteCSV(t *testing.T) {
	companies, comms := fixture()
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, Build(companies, comms, day(2026, 10, 1), nil)))

	want := strings.Join([]string{
		`"Date","Company","Type","Notes"`,
		`"2026-10-31","Acme","Email","last day"`,
		`"2026-10-20","Globex","Phone Call",""`,
		`"2026-10-03","Acme","Email","first"`,
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestWriteCSVEscapesNotes(t *testing.T) {
	company := models.Company{ID: uuid.New(), Name: "Acme", Periodicity: 7}
	comms := []models.Communication{{
		CompanyID: company.ID,
		Type:      models.CommunicationEmail,
		Date:      day(2026, 10, 5),
		Notes:     `Said "hi", then left`,
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, Build([]models.Company{company}, comms, day(2026, 10, 1), nil)))

	lines := strings.Split(buf.String(), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `"2026-10-05","Acme","Email","Said ""hi""; then left"`, lines[1])

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Len(t, records[1], 4, "re-parsing yields no extra columns")
	assert.Equal(t, `Said "hi"; then left`, records[1][3])
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "communications-report-2026-10.csv", FileName(day(2026, 10, 18)))
}
