// ABOUTME: Login, logout, and whoami commands
// ABOUTME: Keeps the current user in the session store between runs
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/harperreed/commtrack/auth"
	"github.com/harperreed/commtrack/models"
	"github.com/harperreed/commtrack/session"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// sessionSlot opens the store only for the duration of each call, so a long
// running serve or mcp process does not hold the directory lock.
type sessionSlot struct {
	dir string
}

func (s sessionSlot) Load() (*models.User, error) {
	store, err := session.Open(s.dir)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.Load()
}

func (s sessionSlot) Save(user *models.User) error {
	store, err := session.Open(s.dir)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Save(user)
}

func (a *app) session() sessionSlot {
	return sessionSlot{dir: a.cfg.SessionDir}
}

func newLoginCmd(a *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as one of the demo users",
		Long: `Log in as admin@example.com (password "admin") or user@example.com (password "user").
Only administrators may add or delete companies.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return fmt.Errorf("--email is required")
			}
			if !cmd.Flags().Changed("password") {
				p, err := readPassword(cmd)
				if err != nil {
					return err
				}
				password = p
			}

			directory, err := auth.NewDirectory()
			if err != nil {
				return err
			}
			user, err := directory.Authenticate(email, password)
			if err != nil {
				return err
			}
			if err := a.session().Save(user); err != nil {
				return fmt.Errorf("failed to save session: %w", err)
			}

			a.logger.Debug("logged in", zap.String("email", user.Email), zap.String("role", string(user.Role)))
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Logged in as %s (%s)\n", user.Name, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email (required)")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when omitted)")
	return cmd
}

// readPassword prompts without echo on a terminal and reads one line otherwise.
func readPassword(cmd *cobra.Command) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(cmd.OutOrStdout(), "Password: ")
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("--password is required when stdin is not a terminal")
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the current user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session().Save(nil); err != nil {
				return fmt.Errorf("failed to clear session: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Logged out")
			return nil
		},
	}
}

func (a *app) tokens() *auth.TokenAuth {
	return auth.NewTokenAuth(a.cfg.JWTSecret, a.cfg.TokenTTL)
}

func newTokenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Print an API bearer token for the current user",
		Long: `Print a signed token for the logged-in user. Send it as "Authorization: Bearer <token>"
to a running "commtrack serve" that shares the same jwt_secret.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.session().Load()
			if err != nil {
				return err
			}
			if user == nil {
				return fmt.Errorf("%w: run commtrack login first", models.ErrUnauthorized)
			}

			token, expiresAt, err := a.tokens().Issue(user)
			if err != nil {
				return err
			}
			a.logger.Debug("issued token", zap.String("email", user.Email), zap.Time("expires_at", expiresAt))
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the current user, or the user a token belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var user *models.User
			var err error
			if token != "" {
				user, err = a.tokens().Verify(strings.TrimSpace(token))
			} else {
				user, err = a.session().Load()
			}
			if err != nil {
				return err
			}
			if user == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (%s)\n", user.Name, user.Email, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Verify this API token instead of reading the session")
	return cmd
}
