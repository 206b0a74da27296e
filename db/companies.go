// ABOUTME: Company database operations
// ABOUTME: Handles CRUD, bulk replace, and company lookups
package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/commtrack/models"
)

const companyColumns = `id, name, location, linkedin_profile, emails, phone_numbers, comments, periodicity, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

func encodeList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	return string(data), err
}

func decodeList(data string) ([]string, error) {
	values := []string{}
	if data == "" {
		return values, nil
	}
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil, err
	}
	return values, nil
}

func scanCompany(row rowScanner) (*models.Company, error) {
	var c models.Company
	var idStr, emails, phones string
	var location, profile, comments sql.NullString
	if err := row.Scan(&idStr, &c.Name, &location, &profile, &emails, &phones, &comments, &c.Periodicity, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}

	var err error
	c.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse company ID: %w", err)
	}
	c.Location = location.String
	c.LinkedInProfile = profile.String
	c.Comments = comments.String

	if c.Emails, err = decodeList(emails); err != nil {
		return nil, fmt.Errorf("failed to decode emails: %w", err)
	}
	if c.PhoneNumbers, err = decodeList(phones); err != nil {
		return nil, fmt.Errorf("failed to decode phone numbers: %w", err)
	}
	return &c, nil
}

func insertCompany(x execer, company *models.Company) error {
	emails, err := encodeList(company.Emails)
	if err != nil {
		return err
	}
	phones, err := encodeList(company.PhoneNumbers)
	if err != nil {
		return err
	}

	_, err = x.Exec(`
		INSERT INTO companies (`+companyColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, company.ID.String(), company.Name, company.Location, company.LinkedInProfile, emails, phones,
		company.Comments, company.Periodicity, company.CreatedAt, company.UpdatedAt)
	return err
}

func prepareCompany(company *models.Company, now time.Time) error {
	company.Normalize()
	if err := company.Validate(); err != nil {
		return err
	}
	if company.ID == uuid.Nil {
		company.ID = uuid.New()
	}
	if company.CreatedAt.IsZero() {
		company.CreatedAt = now
	}
	company.UpdatedAt = now
	return nil
}

func CreateCompany(db *sql.DB, company *models.Company) error {
	if err := prepareCompany(company, time.Now()); err != nil {
		return err
	}
	return insertCompany(db, company)
}

func GetCompany(db *sql.DB, id uuid.UUID) (*models.Company, error) {
	company, err := scanCompany(db.QueryRow(`
		SELECT `+companyColumns+`
		FROM companies WHERE id = ?
	`, id.String()))

	if err == sql.ErrNoRows {
		return nil, nil
	}
	return company, err
}

// ListCompanies returns every company in insertion order.
func ListCompanies(db *sql.DB) ([]models.Company, error) {
	return queryCompanies(db, `SELECT `+companyColumns+` FROM companies ORDER BY rowid`)
}

// likeEscaper makes LIKE wildcards in a search match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// FindCompanies matches query against name and location, case-insensitively.
func FindCompanies(db *sql.DB, query string, limit int) ([]models.Company, error) {
	if limit <= 0 {
		limit = 50
	}

	searchPattern := "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"
	return queryCompanies(db, `
		SELECT `+companyColumns+`
		FROM companies
		WHERE LOWER(name) LIKE ? ESCAPE '\' OR LOWER(location) LIKE ? ESCAPE '\'
		ORDER BY rowid
		LIMIT ?
	`, searchPattern, searchPattern, limit)
}

func queryCompanies(db *sql.DB, query string, args ...interface{}) ([]models.Company, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companies []models.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, *c)
	}

	return companies, rows.Err()
}

// UpdateCompany overwrites the company with the given id. It reports false and
// changes nothing when no such company exists.
func UpdateCompany(db *sql.DB, id uuid.UUID, updates *models.Company) (bool, error) {
	updates.Normalize()
	if err := updates.Validate(); err != nil {
		return false, err
	}
	updates.ID = id
	updates.UpdatedAt = time.Now()

	emails, err := encodeList(updates.Emails)
	if err != nil {
		return false, err
	}
	phones, err := encodeList(updates.PhoneNumbers)
	if err != nil {
		return false, err
	}

	result, err := db.Exec(`
		UPDATE companies
		SET name = ?, location = ?, linkedin_profile = ?, emails = ?, phone_numbers = ?,
		    comments = ?, periodicity = ?, updated_at = ?
		WHERE id = ?
	`, updates.Name, updates.Location, updates.LinkedInProfile, emails, phones,
		updates.Comments, updates.Periodicity, updates.UpdatedAt, id.String())
	if err != nil {
		return false, err
	}

	n, err := result.RowsAffected()
	return n > 0, err
}

// DeleteCompany removes the company only. Its communications stay behind and are
// skipped by readers that join against companies.
func DeleteCompany(db *sql.DB, id uuid.UUID) (bool, error) {
	result, err := db.Exec(`DELETE FROM companies WHERE id = ?`, id.String())
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n > 0, err
}

// ReplaceCompanies swaps the whole collection in one transaction.
func ReplaceCompanies(db *sql.DB, companies []models.Company) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // Safe even after commit
	}()

	if _, err := tx.Exec(`DELETE FROM companies`); err != nil {
		return fmt.Errorf("failed to clear companies: %w", err)
	}

	now := time.Now()
	for i := range companies {
		if err := prepareCompany(&companies[i], now); err != nil {
			return err
		}
		if err := insertCompany(tx, &companies[i]); err != nil {
			return fmt.Errorf("failed to insert company %q: %w", companies[i].Name, err)
		}
	}

	return tx.Commit()
}
