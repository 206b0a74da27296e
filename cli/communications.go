// ABOUTME: Communication logging and method listing commands
// ABOUTME: Logs one communication against one or more companies and re-syncs reminders
package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/commtrack/db"
	"github.com/harperreed/commtrack/models"
	"github.com/harperreed/commtrack/status"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newLogCmd(a *app) *cobra.Command {
	var companyRefs []string
	var typeName, date, notes string

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Log a communication with one or more companies",
		Long:  "Log a communication with one or more companies and show their new status." + ephemeralNote,
		Example: `  commtrack log --company Snowflake --type email --notes "sent pricing"
  commtrack log --company Palantir --company MongoDB --type linkedin_post --date 2026-10-17`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(companyRefs) == 0 {
				return fmt.Errorf("%w: at least one --company is required", models.ErrInvalidInput)
			}
			commType, err := models.ParseCommunicationType(typeName)
			if err != nil {
				return err
			}
			day := status.DateOf(a.now())
			if date != "" {
				day, err = time.Parse(status.DayLayout, date)
				if err != nil {
					return fmt.Errorf("%w: date must look like 2026-10-18", models.ErrInvalidInput)
				}
			}

			ids := make([]uuid.UUID, 0, len(companyRefs))
			names := make(map[uuid.UUID]string, len(companyRefs))
			for _, ref := range companyRefs {
				company, err := resolveCompany(a.db, ref)
				if err != nil {
					return err
				}
				if _, dup := names[company.ID]; dup {
					continue
				}
				ids = append(ids, company.ID)
				names[company.ID] = company.Name
			}

			logged, err := db.LogCommunications(a.db, ids, models.Communication{
				Type:  commType,
				Date:  day,
				Notes: notes,
			})
			if err != nil {
				return fmt.Errorf("failed to log communication: %w", err)
			}
			if _, err := db.SyncNotifications(a.db, a.now()); err != nil {
				return err
			}
			a.logger.Debug("logged communications", zap.Int("count", len(logged)), zap.String("type", string(commType)))

			out := cmd.OutOrStdout()
			for _, c := range logged {
				cs, err := db.CompanyStatusByID(a.db, c.CompanyID, a.now())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "✓ Logged %s with %s on %s\n", c.Type, names[c.CompanyID], c.Date.Format(status.DayLayout))
				if cs != nil {
					fmt.Fprintf(out, "  Now %s, next due %s\n", cs.Status, dateLabel(cs.NextDate))
				}
			}
			printEphemeralHint(cmd)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&companyRefs, "company", "c", nil, "Company id or name (repeatable)")
	cmd.Flags().StringVarP(&typeName, "type", "t", string(models.CommunicationEmail), "Communication type: "+typeList())
	cmd.Flags().StringVarP(&date, "date", "d", "", "Date of the communication (default today)")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "Notes")
	return cmd
}

func typeList() string {
	types := models.CommunicationTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = strings.ToLower(strings.ReplaceAll(string(t), " ", "_"))
	}
	return strings.Join(names, ", ")
}

func newMethodsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List outreach methods in sequence",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			methods, err := db.ListMethods(a.db)
			if err != nil {
				return err
			}
			if len(methods) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No communication methods defined")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "#\tNAME\tMANDATORY\tDESCRIPTION")
			fmt.Fprintln(w, "-\t----\t---------\t-----------")
			for _, m := range methods {
				mandatory := "no"
				if m.Mandatory {
					mandatory = "yes"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", m.Sequence, m.Name, mandatory, m.Description)
			}
			return w.Flush()
		},
	}
}
