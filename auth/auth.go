// ABOUTME: Demo user directory and role checks
// ABOUTME: Verifies bcrypt passwords for the two built-in accounts

package auth

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/harperreed/commtrack/models"
	"golang.org/x/crypto/bcrypt"
)

type account struct {
	user models.User
	hash []byte
}

// Directory is the fixed set of accounts that can log in.
type Directory struct {
	accounts map[string]account
}

type demoAccount struct {
	name, email, password string
	role                  models.Role
}

var demoAccounts = []demoAccount{
	{"Admin User", "admin@example.com", "admin", models.RoleAdmin},
	{"Regular User", "user@example.com", "user", models.RoleUser},
}

// NewDirectory builds the demo directory. User ids are derived from the email so
// they are stable across runs.
func NewDirectory() (*Directory, error) {
	d := &Directory{accounts: make(map[string]account, len(demoAccounts))}
	for _, a := range demoAccounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(a.password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password for %s: %w", a.email, err)
		}
		d.accounts[a.email] = account{
			user: models.User{
				ID:    uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+a.email)),
				Name:  a.name,
				Email: a.email,
				Role:  a.role,
			},
			hash: hash,
		}
	}
	return d, nil
}

// Authenticate returns the matching user, or ErrUnauthorized for any mismatch.
func (d *Directory) Authenticate(email, password string) (*models.User, error) {
	acct, ok := d.accounts[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, fmt.Errorf("%w: invalid email or password", models.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword(acct.hash, []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", models.ErrUnauthorized)
	}
	user := acct.user
	return &user, nil
}

// Users lists the directory sorted by email.
func (d *Directory) Users() []models.User {
	users := make([]models.User, 0, len(d.accounts))
	for _, a := range d.accounts {
		users = append(users, a.user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users
}

// RequireAdmin gates administrative operations.
func RequireAdmin(user *models.User) error {
	if user == nil {
		return fmt.Errorf("%w: login required", models.ErrUnauthorized)
	}
	if !user.IsAdmin() {
		return models.ErrForbidden
	}
	return nil
}
