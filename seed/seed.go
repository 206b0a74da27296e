// ABOUTME: Demo data for the in-memory state container
// ABOUTME: Parses YAML seed files and loads companies, methods, and communications
package seed

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/harperreed/commtrack/db"
	"github.com/harperreed/commtrack/models"
	"github.com/harperreed/commtrack/status"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeed []byte

type File struct {
	Companies      []CompanyEntry       `yaml:"companies"`
	Methods        []MethodEntry        `yaml:"methods"`
	Communications []CommunicationEntry `yaml:"communications"`
	Notices        []NoticeEntry        `yaml:"notices"`
}

type CompanyEntry struct {
	Key             string   `yaml:"key"`
	Name            string   `yaml:"name"`
	Location        string   `yaml:"location"`
	LinkedInProfile string   `yaml:"linkedin_profile"`
	Emails          []string `yaml:"emails"`
	PhoneNumbers    []string `yaml:"phone_numbers"`
	Comments        string   `yaml:"comments"`
	Periodicity     int      `yaml:"periodicity"`
}

type MethodEntry struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Mandatory   bool   `yaml:"mandatory"`
}

// CommunicationEntry is dated either absolutely (date: 2006-01-02) or relative to
// the load time (days_ago).
type CommunicationEntry struct {
	Company string `yaml:"company"`
	Type    string `yaml:"type"`
	DaysAgo int    `yaml:"days_ago"`
	Date    string `yaml:"date"`
	Notes   string `yaml:"notes"`
}

type NoticeEntry struct {
	Title   string `yaml:"title"`
	Message string `yaml:"message"`
}

func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed data: %w", err)
	}
	return &f, nil
}

// Default returns the embedded demo data.
func Default() (*File, error) {
	return Parse(defaultSeed)
}

// Load fills database with the embedded demo data, dated relative to now.
func Load(database *sql.DB, now time.Time) error {
	f, err := Default()
	if err != nil {
		return err
	}
	return f.Apply(database, now)
}

// LoadFile fills database from a YAML seed file on disk.
func LoadFile(database *sql.DB, path string, now time.Time) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return err
	}
	return f.Apply(database, now)
}

// Apply replaces the companies, methods, and communications in database with the
// file's contents and stores its notices.
func (f *File) Apply(database *sql.DB, now time.Time) error {
	companies := make([]models.Company, 0, len(f.Companies))
	for _, c := range f.Companies {
		companies = append(companies, models.Company{
			Name:            c.Name,
			Location:        c.Location,
			LinkedInProfile: c.LinkedInProfile,
			Emails:          c.Emails,
			PhoneNumbers:    c.PhoneNumbers,
			Comments:        c.Comments,
			Periodicity:     c.Periodicity,
		})
	}
	if err := db.ReplaceCompanies(database, companies); err != nil {
		return fmt.Errorf("failed to seed companies: %w", err)
	}

	keys := make(map[string]models.Company, len(companies))
	for i, c := range f.Companies {
		key := c.Key
		if key == "" {
			key = c.Name
		}
		keys[key] = companies[i]
	}

	comms := make([]models.Communication, 0, len(f.Communications))
	for i, entry := range f.Communications {
		company, ok := keys[entry.Company]
		if !ok {
			return fmt.Errorf("%w: communication %d references unknown company %q", models.ErrInvalidInput, i+1, entry.Company)
		}
		typ, err := models.ParseCommunicationType(entry.Type)
		if err != nil {
			return fmt.Errorf("communication %d: %w", i+1, err)
		}
		date, err := entry.date(now)
		if err != nil {
			return fmt.Errorf("communication %d: %w", i+1, err)
		}
		comms = append(comms, models.Communication{
			CompanyID: company.ID,
			Type:      typ,
			Date:      date,
			Notes:     entry.Notes,
		})
	}
	if err := db.ReplaceCommunications(database, comms); err != nil {
		return fmt.Errorf("failed to seed communications: %w", err)
	}

	methods := make([]models.CommunicationMethod, 0, len(f.Methods))
	for _, m := range f.Methods {
		methods = append(methods, models.CommunicationMethod{
			Name:        m.Name,
			Description: m.Description,
			Mandatory:   m.Mandatory,
		})
	}
	if err := db.ReplaceMethods(database, methods); err != nil {
		return fmt.Errorf("failed to seed methods: %w", err)
	}

	if err := db.ClearNotifications(database); err != nil {
		return err
	}
	for _, n := range f.Notices {
		if err := db.AddNotification(database, &models.Notification{
			Kind:      models.NotificationInfo,
			Title:     n.Title,
			Message:   n.Message,
			CreatedAt: now,
		}); err != nil {
			return fmt.Errorf("failed to seed notice: %w", err)
		}
	}

	return nil
}

func (e CommunicationEntry) date(now time.Time) (time.Time, error) {
	if s := strings.TrimSpace(e.Date); s != "" {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: bad date %q", models.ErrInvalidInput, s)
		}
		return d, nil
	}
	return status.DateOf(now).AddDate(0, 0, -e.DaysAgo), nil
}
