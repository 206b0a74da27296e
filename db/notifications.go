// ABOUTME: Notification database operations
// ABOUTME: Stores derived reminders with read state and re-syncs them from company cadence
package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/commtrack/models"
	"github.com/harperreed/commtrack/status"
)

const notificationColumns = `id, kind, title, message, company_id, is_read, created_at`

func scanNotification(row rowScanner) (*models.Notification, error) {
	var n models.Notification
	var kind string
	var companyID sql.NullString
	if err := row.Scan(&n.ID, &kind, &n.Title, &n.Message, &companyID, &n.Read, &n.CreatedAt); err != nil {
		return nil, err
	}
	n.Kind = models.NotificationKind(kind)

	if companyID.Valid && companyID.String != "" {
		cid, err := uuid.Parse(companyID.String)
		if err == nil {
			n.CompanyID = cid
		}
	}
	return &n, nil
}

func nullableCompanyID(id uuid.UUID) *string {
	if id == uuid.Nil {
		return nil
	}
	s := id.String()
	return &s
}

func insertNotification(x execer, n *models.Notification, position int) error {
	_, err := x.Exec(`
		INSERT INTO notifications (`+notificationColumns+`, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, n.ID, string(n.Kind), n.Title, n.Message, nullableCompanyID(n.CompanyID), n.Read, n.CreatedAt, position)
	return err
}

// ListNotifications returns notifications in the order they were last stored.
func ListNotifications(db *sql.DB) ([]models.Notification, error) {
	rows, err := db.Query(`
		SELECT ` + notificationColumns + `
		FROM notifications
		ORDER BY position, rowid
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, *n)
	}

	return notifications, rows.Err()
}

func UnreadNotificationCount(db *sql.DB) (int, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM notifications WHERE is_read = 0`).Scan(&count)
	return count, err
}

// AddNotification appends a free-form info notification.
func AddNotification(db *sql.DB, n *models.Notification) error {
	if n.Title == "" && n.Message == "" {
		return fmt.Errorf("%w: notification needs a title or message", models.ErrInvalidInput)
	}
	if n.Kind == "" {
		n.Kind = models.NotificationInfo
	}
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	var position int
	if err := db.QueryRow(`SELECT COALESCE(MAX(position), 0) + 1 FROM notifications`).Scan(&position); err != nil {
		return fmt.Errorf("failed to read notification position: %w", err)
	}
	return insertNotification(db, n, position)
}

func ReplaceNotifications(db *sql.DB, notifications []models.Notification) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // Safe even after commit
	}()

	if _, err := tx.Exec(`DELETE FROM notifications`); err != nil {
		return fmt.Errorf("failed to clear notifications: %w", err)
	}

	for i := range notifications {
		if err := insertNotification(tx, &notifications[i], i+1); err != nil {
			return fmt.Errorf("failed to insert notification %s: %w", notifications[i].ID, err)
		}
	}

	return tx.Commit()
}

// MarkNotificationRead reports false when no notification has that id.
func MarkNotificationRead(db *sql.DB, id string) (bool, error) {
	result, err := db.Exec(`UPDATE notifications SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n > 0, err
}

func MarkAllNotificationsRead(db *sql.DB) error {
	_, err := db.Exec(`UPDATE notifications SET is_read = 1`)
	return err
}

func ClearNotifications(db *sql.DB) error {
	_, err := db.Exec(`DELETE FROM notifications`)
	return err
}

// SyncNotifications recomputes the derived notifications for now and stores them,
// keeping read flags of reminders that were already known.
func SyncNotifications(db *sql.DB, now time.Time) ([]models.Notification, error) {
	companies, err := ListCompanies(db)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	comms, err := ListCommunications(db, CommunicationFilter{})
	if err != nil {
		return nil, err
	}
	prior, err := ListNotifications(db)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	merged := status.MergeNotifications(prior, status.SynthesizeNotifications(companies, comms, now))
	if err := ReplaceNotifications(db, merged); err != nil {
		return nil, err
	}
	return merged, nil
}
