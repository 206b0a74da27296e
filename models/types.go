// ABOUTME: Data models for communication tracking entities
// ABOUTME: Defines Company, Communication, CommunicationMethod, Notification, and User structs
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

type Company struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Location        string    `json:"location,omitempty"`
	LinkedInProfile string    `json:"linkedin_profile,omitempty"`
	Emails          []string  `json:"emails"`
	PhoneNumbers    []string  `json:"phone_numbers"`
	Comments        string    `json:"comments,omitempty"`
	Periodicity     int       `json:"communication_periodicity"` // in days
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Validate checks the fields an administrator must supply.
func (c *Company) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: company name is required", ErrInvalidInput)
	}
	if c.Periodicity < 1 {
		return fmt.Errorf("%w: communication periodicity must be at least 1 day, got %d", ErrInvalidInput, c.Periodicity)
	}
	return nil
}

// Normalize trims text fields and drops duplicate emails and phone numbers.
func (c *Company) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Location = strings.TrimSpace(c.Location)
	c.LinkedInProfile = strings.TrimSpace(c.LinkedInProfile)
	c.Emails = dedupe(c.Emails, strings.ToLower)
	c.PhoneNumbers = dedupe(c.PhoneNumbers, func(s string) string { return s })
}

func dedupe(values []string, key func(string) string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		k := key(v)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, v)
	}
	return out
}

type CommunicationType string

const (
	CommunicationLinkedInPost    CommunicationType = "LinkedIn Post"
	CommunicationLinkedInMessage CommunicationType = "LinkedIn Message"
	CommunicationEmail           CommunicationType = "Email"
	CommunicationPhoneCall       CommunicationType = "Phone Call"
	CommunicationOther           CommunicationType = "Other"
)

// CommunicationTypes returns every type in display order.
func CommunicationTypes() []CommunicationType {
	return []CommunicationType{
		CommunicationLinkedInPost,
		CommunicationLinkedInMessage,
		CommunicationEmail,
		CommunicationPhoneCall,
		CommunicationOther,
	}
}

func (t CommunicationType) Valid() bool {
	for _, known := range CommunicationTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// ParseCommunicationType accepts the display name in any case ("phone call")
// or its snake form ("phone_call").
func ParseCommunicationType(s string) (CommunicationType, error) {
	norm := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", " "))
	for _, known := range CommunicationTypes() {
		if strings.ToLower(string(known)) == norm {
			return known, nil
		}
	}
	return "", fmt.Errorf("%w: unknown communication type %q", ErrInvalidInput, s)
}

type Communication struct {
	ID        ulid.ULID         `json:"id"`
	CompanyID uuid.UUID         `json:"company_id"`
	Type      CommunicationType `json:"type"`
	Date      time.Time         `json:"date"` // calendar date, UTC midnight
	Notes     string            `json:"notes,omitempty"`
}

func (c *Communication) Validate() error {
	if c.CompanyID == uuid.Nil {
		return fmt.Errorf("%w: company is required", ErrInvalidInput)
	}
	if !c.Type.Valid() {
		return fmt.Errorf("%w: unknown communication type %q", ErrInvalidInput, c.Type)
	}
	if c.Date.IsZero() {
		return fmt.Errorf("%w: communication date is required", ErrInvalidInput)
	}
	return nil
}

type CommunicationMethod struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Sequence    int       `json:"sequence"`
	Mandatory   bool      `json:"is_mandatory"`
}

type NotificationKind string

const (
	NotificationOverdue NotificationKind = "overdue"
	NotificationDue     NotificationKind = "due"
	NotificationInfo    NotificationKind = "info"
)

type Notification struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	CompanyID uuid.UUID        `json:"company_id"`
	Read      bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}

// NotificationKey is the identity of a derived notification: one per kind and company.
func NotificationKey(kind NotificationKind, companyID uuid.UUID) string {
	return string(kind) + "-" + companyID.String()
}

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

type User struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  Role      `json:"role"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Status is the cadence classification of a company.
type Status string

const (
	StatusNone     Status = "none"
	StatusOverdue  Status = "overdue"
	StatusDue      Status = "due"
	StatusUpcoming Status = "upcoming"
)

// CompanyStatus combines a Company with its derived cadence info.
type CompanyStatus struct {
	Company
	Latest   *Communication `json:"latest_communication,omitempty"`
	NextDate *time.Time     `json:"next_communication_date,omitempty"`
	Status   Status         `json:"status"`
}
