// ABOUTME: Company CLI commands
// ABOUTME: Lists, shows, adds, and deletes companies; adding and deleting need an admin session
package cli

import (
	"database/sql"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/harperreed/commtrack/auth"
	"github.com/harperreed/commtrack/db"
	"github.com/harperreed/commtrack/models"
	"github.com/harperreed/commtrack/status"
	"github.com/spf13/cobra"
)

func newCompaniesCmd(a *app) *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:     "companies",
		Aliases: []string{"company"},
		Short:   "List and manage companies",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var companies []models.Company
			var err error
			if query != "" {
				companies, err = db.FindCompanies(a.db, query, 0)
			} else {
				companies, err = db.ListCompanies(a.db)
			}
			if err != nil {
				return fmt.Errorf("failed to find companies: %w", err)
			}

			if len(companies) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No companies found")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tLOCATION\tEVERY")
			fmt.Fprintln(w, "--\t----\t--------\t-----")
			for _, c := range companies {
				fmt.Fprintf(w, "%s\t%s\t%s\t%dd\n", c.ID.String()[:8], c.Name, c.Location, c.Periodicity)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "Search by name or location")

	cmd.AddCommand(newCompanyShowCmd(a), newCompanyAddCmd(a), newCompanyDeleteCmd(a))
	return cmd
}

func newCompanyShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id or name>",
		Short: "Show a company with its status and recent communications",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			company, err := resolveCompany(a.db, args[0])
			if err != nil {
				return err
			}
			cs, err := db.CompanyStatusByID(a.db, company.ID, a.now())
			if err != nil {
				return err
			}
			recent, err := db.RecentCommunications(a.db, company.ID, 5)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", cs.Name)
			fmt.Fprintf(out, "  ID: %s\n", cs.ID)
			if cs.Location != "" {
				fmt.Fprintf(out, "  Location: %s\n", cs.Location)
			}
			if cs.LinkedInProfile != "" {
				fmt.Fprintf(out, "  LinkedIn: %s\n", cs.LinkedInProfile)
			}
			if len(cs.Emails) > 0 {
				fmt.Fprintf(out, "  Emails: %s\n", strings.Join(cs.Emails, ", "))
			}
			if len(cs.PhoneNumbers) > 0 {
				fmt.Fprintf(out, "  Phone Numbers: %s\n", strings.Join(cs.PhoneNumbers, ", "))
			}
			fmt.Fprintf(out, "  Periodicity: every %d days\n", cs.Periodicity)
			if cs.Comments != "" {
				fmt.Fprintf(out, "  Comments: %s\n", cs.Comments)
			}
			fmt.Fprintf(out, "  Status: %s\n", cs.Status)
			fmt.Fprintf(out, "  Next Communication: %s\n", dateLabel(cs.NextDate))

			if len(recent) == 0 {
				fmt.Fprintln(out, "\nNo communications logged yet")
				return nil
			}
			fmt.Fprintln(out, "\nRecent communications:")
			for _, c := range recent {
				line := fmt.Sprintf("  %s  %s", c.Date.Format(status.DayLayout), c.Type)
				if c.Notes != "" {
					line += "  " + c.Notes
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}

func newCompanyAddCmd(a *app) *cobra.Command {
	var company models.Company

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a company (admin only)",
		Long:  "Add a company to track. Requires an administrator session." + ephemeralNote,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAdmin(); err != nil {
				return err
			}
			if err := db.CreateCompany(a.db, &company); err != nil {
				return fmt.Errorf("failed to create company: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Company created: %s (ID: %s)\n", company.Name, company.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "  Contact every %d days\n", company.Periodicity)
			printEphemeralHint(cmd)
			return nil
		},
	}

	cmd.Flags().StringVar(&company.Name, "name", "", "Company name (required)")
	cmd.Flags().StringVar(&company.Location, "location", "", "Location")
	cmd.Flags().StringVar(&company.LinkedInProfile, "linkedin", "", "LinkedIn profile URL")
	cmd.Flags().StringSliceVar(&company.Emails, "email", nil, "Contact email (repeatable)")
	cmd.Flags().StringSliceVar(&company.PhoneNumbers, "phone", nil, "Contact phone number (repeatable)")
	cmd.Flags().StringVar(&company.Comments, "comments", "", "Free-form comments")
	cmd.Flags().IntVar(&company.Periodicity, "periodicity", 14, "Days between communications")
	return cmd
}

func newCompanyDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id or name>",
		Short: "Delete a company (admin only)",
		Long:  "Delete a company. Its logged communications are kept but no longer shown." + ephemeralNote,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAdmin(); err != nil {
				return err
			}
			company, err := resolveCompany(a.db, args[0])
			if err != nil {
				return err
			}
			if _, err := db.DeleteCompany(a.db, company.ID); err != nil {
				return fmt.Errorf("failed to delete company: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted %s\n", company.Name)
			printEphemeralHint(cmd)
			return nil
		},
	}
}

func (a *app) requireAdmin() error {
	user, err := a.session().Load()
	if err != nil {
		return err
	}
	if err := auth.RequireAdmin(user); err != nil {
		return fmt.Errorf("only administrators can change companies: %w", err)
	}
	return nil
}

// resolveCompany accepts a full id, an id prefix, an exact name, or a unique
// case-insensitive name fragment.
func resolveCompany(database *sql.DB, ref string) (*models.Company, error) {
	ref = strings.TrimSpace(ref)
	if id, err := uuid.Parse(ref); err == nil {
		company, err := db.GetCompany(database, id)
		if err != nil {
			return nil, err
		}
		if company == nil {
			return nil, fmt.Errorf("%w: company %s", models.ErrNotFound, ref)
		}
		return company, nil
	}

	companies, err := db.ListCompanies(database)
	if err != nil {
		return nil, err
	}

	lower := strings.ToLower(ref)
	var matches []models.Company
	for _, c := range companies {
		if strings.EqualFold(c.Name, ref) {
			return &c, nil
		}
		if strings.HasPrefix(c.ID.String(), lower) || strings.Contains(strings.ToLower(c.Name), lower) {
			matches = append(matches, c)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: no company matches %q", models.ErrNotFound, ref)
	case 1:
		return &matches[0], nil
	default:
		names := make([]string, len(matches))
		for i, c := range matches {
			names[i] = c.Name
		}
		return nil, fmt.Errorf("%w: %q matches %s", models.ErrInvalidInput, ref, strings.Join(names, ", "))
	}
}
