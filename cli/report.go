// ABOUTME: Monthly report and calendar commands
// ABOUTME: Summarizes a month of communications and exports it as CSV
package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/commtrack/db"
	"github.com/harperreed/commtrack/report"
	"github.com/harperreed/commtrack/status"
	"github.com/harperreed/commtrack/viz"
	"github.com/spf13/cobra"
)

// monthFlag resolves --month, defaulting to the current month.
func (a *app) monthFlag(value string) (time.Time, error) {
	if value == "" {
		return report.MonthOf(a.now()), nil
	}
	return report.ParseMonth(value)
}

func newReportCmd(a *app) *cobra.Command {
	var month, companyRef, csvPath string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize a month of communications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.monthFlag(month)
			if err != nil {
				return err
			}

			var companyID *uuid.UUID
			if companyRef != "" {
				company, err := resolveCompany(a.db, companyRef)
				if err != nil {
					return err
				}
				companyID = &company.ID
			}

			companies, err := db.ListCompanies(a.db)
			if err != nil {
				return err
			}
			comms, err := db.ListCommunications(a.db, db.CommunicationFilter{})
			if err != nil {
				return err
			}
			r := report.Build(companies, comms, m, companyID)

			switch csvPath {
			case "":
				return printReport(cmd.OutOrStdout(), r)
			case "-":
				return report.WriteCSV(cmd.OutOrStdout(), r)
			}

			f, err := os.Create(csvPath)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", csvPath, err)
			}
			if err := report.WriteCSV(f, r); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d communications to %s\n", r.Total, csvPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "Month to report on, YYYY-MM (default this month)")
	cmd.Flags().StringVar(&companyRef, "company", "", "Only this company (id or name)")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Write CSV to this file instead (- for stdout); suggested name is "+report.FileName(time.Now()))
	return cmd
}

func printReport(out io.Writer, r *report.Report) error {
	fmt.Fprintf(out, "Communications in %s: %d\n\n", r.Month.Format("January 2006"), r.Total)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tCOUNT")
	fmt.Fprintln(w, "----\t-----")
	for _, tc := range r.ByType {
		fmt.Fprintf(w, "%s\t%d\n", tc.Type, tc.Count)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "COMPANY\tCOUNT")
	fmt.Fprintln(w, "-------\t-----")
	for _, cc := range r.ByCompany {
		if r.CompanyID != nil && cc.CompanyID != *r.CompanyID {
			continue
		}
		fmt.Fprintf(w, "%s\t%d\n", cc.Name, cc.Count)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if r.Total == 0 {
		return nil
	}
	fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tCOMPANY\tTYPE\tNOTES")
	fmt.Fprintln(w, "----\t-------\t----\t-----")
	for _, row := range r.Rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", row.Date.Format(status.DayLayout), row.CompanyName, row.Type, row.Notes)
	}
	return w.Flush()
}

func newCalendarCmd(a *app) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show past and scheduled communications for a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.monthFlag(month)
			if err != nil {
				return err
			}
			companies, err := db.ListCompanies(a.db)
			if err != nil {
				return err
			}
			comms, err := db.ListCommunications(a.db, db.CommunicationFilter{})
			if err != nil {
				return err
			}

			events := viz.CalendarEvents(companies, comms, m, a.now())
			fmt.Fprint(cmd.OutOrStdout(), viz.RenderCalendar(m, events, a.now()))
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "Month to show, YYYY-MM (default this month)")
	return cmd
}
