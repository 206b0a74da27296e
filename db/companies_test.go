// ABOUTME: Tests for company database operations
// ABOUTME: Covers CRUD, insertion order, update-by-id semantics, and bulk replace
package db

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/harperreed/commtrack/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDatabase()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func mustCreateCompany(t *testing.T, db *sql.DB, name string, periodicity int) *models.Company {
	t.Helper()
	company := &models.Company{Name: name, Periodicity: periodicity}
	require.NoError(t, CreateCompany(db, company))
	return company
}

func TestCreateAndGetCompany(t *testing.T) {
	db := setupTestDB(t)

	company := &models.Company{
		Name:            "Acme Corp",
		Location:        "Chicago, IL",
		LinkedInProfile: "https://linkedin.com/company/acme",
		Emails:          []string{"hr@acme.com", "HR@acme.com"},
		PhoneNumbers:    []string{"+1 312 555 0100"},
		Comments:        "Prefers email",
		Periodicity:     14,
	}
	require.NoError(t, CreateCompany(db, company))
	assert.NotEqual(t, uuid.Nil, company.ID)

	got, err := GetCompany(db, company.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Acme Corp", got.Name)
	assert.Equal(t, []string{"hr@acme.com"}, got.Emails)
	assert.Equal(t, []string{"+1 312 555 0100"}, got.PhoneNumbers)
	assert.Equal(t, 14, got.Periodicity)
	assert.True(t, got.CreatedAt.Equal(company.CreatedAt))
}

func TestCreateCompanyRejectsInvalid(t *testing.T) {
	db := setupTestDB(t)

	err := CreateCompany(db, &models.Company{Name: "No cadence"})
	assert.True(t, errors.Is(err, models.ErrInvalidInput))

	companies, err := ListCompanies(db)
	require.NoError(t, err)
	assert.Empty(t, companies)
}

func TestGetCompanyMissing(t *testing.T) {
	db := setupTestDB(t)

	got, err := GetCompany(db, uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestListCompaniesInsertionOrder(t *testing.T) {
	db := setupTestDB(t)

	for _, name := range []string{"Zeta", "Alpha", "Mu"} {
		mustCreateCompany(t, db, name, 7)
	}

	companies, err := ListCompanies(db)
	require.NoError(t, err)
	require.Len(t, companies, 3)
	assert.Equal(t, "Zeta", companies[0].Name)
	assert.Equal(t, "Alpha", companies[1].Name)
	assert.Equal(t, "Mu", companies[2].Name)
	assert.NotNil(t, companies[0].Emails, "empty lists decode as empty, not nil")
}

func TestFindCompanies(t *testing.T) {
	db := setupTestDB(t)

	mustCreateCompany(t, db, "Microsoft", 7)
	mustCreateCompany(t, db, "Google", 7)
	mustCreateCompany(t, db, "Micron", 30)

	found, err := FindCompanies(db, "micro", 10)
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestFindCompaniesTreatsWildcardsLiterally(t *testing.T) {
	db := setupTestDB(t)

	mustCreateCompany(t, db, "Acme", 7)
	mustCreateCompany(t, db, "100% Remote", 7)
	mustCreateCompany(t, db, "snake_case Labs", 7)

	found, err := FindCompanies(db, "%", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "100% Remote", found[0].Name)

	found, err = FindCompanies(db, "_", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "snake_case Labs", found[0].Name)

	found, err = FindCompanies(db, "e_c", 10)
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestUpdateCompany(t *testing.T) {
	db := setupTestDB(t)
	company := mustCreateCompany(t, db, "Acme", 7)

	ok, err := UpdateCompany(db, company.ID, &models.Company{Name: "Acme Inc", Periodicity: 21})
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := GetCompany(db, company.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Inc", got.Name)
	assert.Equal(t, 21, got.Periodicity)
}

func TestUpdateCompanyMissingIsNoop(t *testing.T) {
	db := setupTestDB(t)
	mustCreateCompany(t, db, "Acme", 7)

	ok, err := UpdateCompany(db, uuid.New(), &models.Company{Name: "Ghost", Periodicity: 3})
	require.NoError(t, err)
	assert.False(t, ok)

	companies, err := ListCompanies(db)
	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Equal(t, "Acme", companies[0].Name)
}

func TestDeleteCompanyKeepsCommunications(t *testing.T) {
	db := setupTestDB(t)
	company := mustCreateCompany(t, db, "Acme", 7)
	require.NoError(t, LogCommunication(db, &models.Communication{
		CompanyID: company.ID,
		Type:      models.CommunicationEmail,
		Date:      today.AddDate(0, 0, -1),
	}))

	ok, err := DeleteCompany(db, company.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	comms, err := ListCommunications(db, CommunicationFilter{})
	require.NoError(t, err)
	assert.Len(t, comms, 1, "deleting a company does not cascade")

	statuses, err := CompanyStatuses(db, today)
	require.NoError(t, err)
	assert.Empty(t, statuses)

	ok, err = DeleteCompany(db, company.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReplaceCompanies(t *testing.T) {
	db := setupTestDB(t)
	mustCreateCompany(t, db, "Old", 7)

	replacement := []models.Company{
		{Name: "New One", Periodicity: 7},
		{Name: "New Two", Periodicity: 14},
	}
	require.NoError(t, ReplaceCompanies(db, replacement))

	companies, err := ListCompanies(db)
	require.NoError(t, err)
	require.Len(t, companies, 2)
	assert.Equal(t, "New One", companies[0].Name)
	assert.Equal(t, replacement[1].ID, companies[1].ID)
}

func TestReplaceCompaniesIsAtomic(t *testing.T) {
	db := setupTestDB(t)
	mustCreateCompany(t, db, "Keep", 7)

	err := ReplaceCompanies(db, []models.Company{
		{Name: "Fine", Periodicity: 7},
		{Name: "Broken", Periodicity: 0},
	})
	require.Error(t, err)

	companies, err := ListCompanies(db)
	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Equal(t, "Keep", companies[0].Name)
}
