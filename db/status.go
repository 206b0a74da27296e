// ABOUTME: Derived cadence reads over the stored companies and communications
// ABOUTME: Feeds the status engine with the current collections
package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/commtrack/models"
	"github.com/harperreed/commtrack/status"
)

// CompanyStatuses evaluates every company against its communication history as of now.
func CompanyStatuses(db *sql.DB, now time.Time) ([]models.CompanyStatus, error) {
	companies, err := ListCompanies(db)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	comms, err := ListCommunications(db, CommunicationFilter{})
	if err != nil {
		return nil, err
	}
	return status.EvaluateAll(companies, comms, now), nil
}

// CompanyStatusByID returns nil, nil when the company does not exist.
func CompanyStatusByID(db *sql.DB, id uuid.UUID, now time.Time) (*models.CompanyStatus, error) {
	company, err := GetCompany(db, id)
	if err != nil || company == nil {
		return nil, err
	}
	comms, err := ListCommunications(db, CommunicationFilter{CompanyID: &id})
	if err != nil {
		return nil, err
	}
	cs := status.Evaluate(*company, comms, now)
	return &cs, nil
}
