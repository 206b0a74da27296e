// ABOUTME: Communication method database operations
// ABOUTME: Handles CRUD and sequence reordering of the outreach method list
package db

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/harperreed/commtrack/models"
)

const methodColumns = `id, name, description, sequence, is_mandatory`

func scanMethod(row rowScanner) (*models.CommunicationMethod, error) {
	var m models.CommunicationMethod
	var idStr string
	var description sql.NullString
	if err := row.Scan(&idStr, &m.Name, &description, &m.Sequence, &m.Mandatory); err != nil {
		return nil, err
	}

	var err error
	if m.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("failed to parse method ID: %w", err)
	}
	m.Description = description.String
	return &m, nil
}

func validateMethod(method *models.CommunicationMethod) error {
	method.Name = strings.TrimSpace(method.Name)
	if method.Name == "" {
		return fmt.Errorf("%w: method name is required", models.ErrInvalidInput)
	}
	return nil
}

func insertMethod(x execer, method *models.CommunicationMethod) error {
	_, err := x.Exec(`
		INSERT INTO communication_methods (`+methodColumns+`)
		VALUES (?, ?, ?, ?, ?)
	`, method.ID.String(), method.Name, method.Description, method.Sequence, method.Mandatory)
	return err
}

// CreateMethod appends a method. A zero sequence places it after the existing ones.
func CreateMethod(db *sql.DB, method *models.CommunicationMethod) error {
	if err := validateMethod(method); err != nil {
		return err
	}
	method.ID = uuid.New()

	if method.Sequence <= 0 {
		var count int
		if err := db.QueryRow(`SELECT COUNT(*) FROM communication_methods`).Scan(&count); err != nil {
			return fmt.Errorf("failed to count methods: %w", err)
		}
		method.Sequence = count + 1
	}

	return insertMethod(db, method)
}

func GetMethod(db *sql.DB, id uuid.UUID) (*models.CommunicationMethod, error) {
	method, err := scanMethod(db.QueryRow(`
		SELECT `+methodColumns+`
		FROM communication_methods WHERE id = ?
	`, id.String()))

	if err == sql.ErrNoRows {
		return nil, nil
	}
	return method, err
}

// ListMethods returns methods ordered by sequence.
func ListMethods(db *sql.DB) ([]models.CommunicationMethod, error) {
	rows, err := db.Query(`
		SELECT ` + methodColumns + `
		FROM communication_methods
		ORDER BY sequence, rowid
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var methods []models.CommunicationMethod
	for rows.Next() {
		m, err := scanMethod(rows)
		if err != nil {
			return nil, err
		}
		methods = append(methods, *m)
	}

	return methods, rows.Err()
}

func UpdateMethod(db *sql.DB, id uuid.UUID, updates *models.CommunicationMethod) (bool, error) {
	if err := validateMethod(updates); err != nil {
		return false, err
	}
	updates.ID = id

	result, err := db.Exec(`
		UPDATE communication_methods
		SET name = ?, description = ?, sequence = ?, is_mandatory = ?
		WHERE id = ?
	`, updates.Name, updates.Description, updates.Sequence, updates.Mandatory, id.String())
	if err != nil {
		return false, err
	}

	n, err := result.RowsAffected()
	return n > 0, err
}

func DeleteMethod(db *sql.DB, id uuid.UUID) (bool, error) {
	result, err := db.Exec(`DELETE FROM communication_methods WHERE id = ?`, id.String())
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n > 0, err
}

func ReplaceMethods(db *sql.DB, methods []models.CommunicationMethod) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // Safe even after commit
	}()

	if _, err := tx.Exec(`DELETE FROM communication_methods`); err != nil {
		return fmt.Errorf("failed to clear methods: %w", err)
	}

	for i := range methods {
		if err := validateMethod(&methods[i]); err != nil {
			return err
		}
		if methods[i].ID == uuid.Nil {
			methods[i].ID = uuid.New()
		}
		if methods[i].Sequence <= 0 {
			methods[i].Sequence = i + 1
		}
		if err := insertMethod(tx, &methods[i]); err != nil {
			return fmt.Errorf("failed to insert method %q: %w", methods[i].Name, err)
		}
	}

	return tx.Commit()
}

// ReorderMethods assigns sequence = position+1 following ids. The ids must be
// exactly the current set of methods, each once.
func ReorderMethods(db *sql.DB, ids []uuid.UUID) error {
	current, err := ListMethods(db)
	if err != nil {
		return fmt.Errorf("failed to list methods: %w", err)
	}

	if len(ids) != len(current) {
		return fmt.Errorf("%w: expected %d method ids, got %d", models.ErrInvalidInput, len(current), len(ids))
	}
	known := make(map[uuid.UUID]bool, len(current))
	for _, m := range current {
		known[m.ID] = true
	}
	for _, id := range ids {
		if !known[id] {
			return fmt.Errorf("%w: unknown or repeated method id %s", models.ErrInvalidInput, id)
		}
		delete(known, id)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // Safe even after commit
	}()

	for i, id := range ids {
		if _, err := tx.Exec(`UPDATE communication_methods SET sequence = ? WHERE id = ?`, i+1, id.String()); err != nil {
			return fmt.Errorf("failed to update sequence: %w", err)
		}
	}

	return tx.Commit()
}
