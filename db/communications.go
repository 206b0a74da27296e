// ABOUTME: Communication log database operations
// ABOUTME: Handles logging, bulk logging, filtered listing, and edits of communications
package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/commtrack/models"
	"github.com/harperreed/commtrack/status"
	"github.com/oklog/ulid/v2"
)

// dateLayout is how communication dates are stored: calendar dates, no time of day.
const dateLayout = "2006-01-02"

const communicationColumns = `id, company_id, type, date, notes`

// CommunicationFilter narrows ListCommunications. Zero values match everything.
type CommunicationFilter struct {
	CompanyID *uuid.UUID
	From      *time.Time // inclusive
	To        *time.Time // inclusive
	Limit     int
}

func scanCommunication(row rowScanner) (*models.Communication, error) {
	var c models.Communication
	var idStr, companyID, typ, date string
	var notes sql.NullString
	if err := row.Scan(&idStr, &companyID, &typ, &date, &notes); err != nil {
		return nil, err
	}

	var err error
	if c.ID, err = ulid.ParseStrict(idStr); err != nil {
		return nil, fmt.Errorf("failed to parse communication ID: %w", err)
	}
	if c.CompanyID, err = uuid.Parse(companyID); err != nil {
		return nil, fmt.Errorf("failed to parse company ID: %w", err)
	}
	if c.Date, err = time.Parse(dateLayout, date); err != nil {
		return nil, fmt.Errorf("failed to parse communication date: %w", err)
	}
	c.Type = models.CommunicationType(typ)
	c.Notes = notes.String
	return &c, nil
}

func prepareCommunication(comm *models.Communication) error {
	if err := comm.Validate(); err != nil {
		return err
	}
	if comm.ID == (ulid.ULID{}) {
		comm.ID = ulid.Make()
	}
	comm.Date = status.DateOf(comm.Date)
	comm.Notes = strings.TrimSpace(comm.Notes)
	return nil
}

func insertCommunication(x execer, comm *models.Communication) error {
	_, err := x.Exec(`
		INSERT INTO communications (`+communicationColumns+`)
		VALUES (?, ?, ?, ?, ?)
	`, comm.ID.String(), comm.CompanyID.String(), string(comm.Type), comm.Date.Format(dateLayout), comm.Notes)
	return err
}

// LogCommunication records one communication. The company is not looked up here;
// callers resolve it first.
func LogCommunication(db *sql.DB, comm *models.Communication) error {
	if err := prepareCommunication(comm); err != nil {
		return err
	}
	return insertCommunication(db, comm)
}

// LogCommunications records the same communication against several companies at once.
// Either every entry is stored or none is.
func LogCommunications(db *sql.DB, companyIDs []uuid.UUID, template models.Communication) ([]models.Communication, error) {
	if len(companyIDs) == 0 {
		return nil, fmt.Errorf("%w: select at least one company", models.ErrInvalidInput)
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // Safe even after commit
	}()

	logged := make([]models.Communication, 0, len(companyIDs))
	for _, companyID := range companyIDs {
		comm := template
		comm.ID = ulid.ULID{}
		comm.CompanyID = companyID
		if err := prepareCommunication(&comm); err != nil {
			return nil, err
		}
		if err := insertCommunication(tx, &comm); err != nil {
			return nil, fmt.Errorf("failed to log communication: %w", err)
		}
		logged = append(logged, comm)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit communications: %w", err)
	}
	return logged, nil
}

func GetCommunication(db *sql.DB, id ulid.ULID) (*models.Communication, error) {
	comm, err := scanCommunication(db.QueryRow(`
		SELECT `+communicationColumns+`
		FROM communications WHERE id = ?
	`, id.String()))

	if err == sql.ErrNoRows {
		return nil, nil
	}
	return comm, err
}

// ListCommunications returns communications newest first. Same-day entries are
// ordered by id, most recently logged first.
func ListCommunications(db *sql.DB, filter CommunicationFilter) ([]models.Communication, error) {
	query := `SELECT ` + communicationColumns + ` FROM communications WHERE 1=1`
	var args []interface{}

	if filter.CompanyID != nil {
		query += ` AND company_id = ?`
		args = append(args, filter.CompanyID.String())
	}
	if filter.From != nil {
		query += ` AND date >= ?`
		args = append(args, status.DateOf(*filter.From).Format(dateLayout))
	}
	if filter.To != nil {
		query += ` AND date <= ?`
		args = append(args, status.DateOf(*filter.To).Format(dateLayout))
	}

	query += ` ORDER BY date DESC, id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query communications: %w", err)
	}
	defer rows.Close()

	var comms []models.Communication
	for rows.Next() {
		c, err := scanCommunication(rows)
		if err != nil {
			return nil, err
		}
		comms = append(comms, *c)
	}

	return comms, rows.Err()
}

// RecentCommunications returns the company's last n communications, newest first.
func RecentCommunications(db *sql.DB, companyID uuid.UUID, n int) ([]models.Communication, error) {
	if n <= 0 {
		n = 5
	}
	return ListCommunications(db, CommunicationFilter{CompanyID: &companyID, Limit: n})
}

// UpdateCommunication overwrites the communication with the given id and reports
// whether it existed.
func UpdateCommunication(db *sql.DB, id ulid.ULID, updates *models.Communication) (bool, error) {
	updates.ID = id
	if err := prepareCommunication(updates); err != nil {
		return false, err
	}

	result, err := db.Exec(`
		UPDATE communications
		SET company_id = ?, type = ?, date = ?, notes = ?
		WHERE id = ?
	`, updates.CompanyID.String(), string(updates.Type), updates.Date.Format(dateLayout), updates.Notes, id.String())
	if err != nil {
		return false, err
	}

	n, err := result.RowsAffected()
	return n > 0, err
}

func DeleteCommunication(db *sql.DB, id ulid.ULID) (bool, error) {
	result, err := db.Exec(`DELETE FROM communications WHERE id = ?`, id.String())
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n > 0, err
}

func ReplaceCommunications(db *sql.DB, comms []models.Communication) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // Safe even after commit
	}()

	if _, err := tx.Exec(`DELETE FROM communications`); err != nil {
		return fmt.Errorf("failed to clear communications: %w", err)
	}

	for i := range comms {
		if err := prepareCommunication(&comms[i]); err != nil {
			return err
		}
		if err := insertCommunication(tx, &comms[i]); err != nil {
			return fmt.Errorf("failed to insert communication: %w", err)
		}
	}

	return tx.Commit()
}
