// ABOUTME: Cadence status and notification commands
// ABOUTME: Prints each company's status and the synced reminder list
package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/harperreed/commtrack/db"
	"github.com/harperreed/commtrack/models"
	"github.com/harperreed/commtrack/status"
	"github.com/spf13/cobra"
)

func newStatusCmd(a *app) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show every company's communication status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if filter != "" && !validStatus(filter) {
				return fmt.Errorf("%w: status must be one of overdue, due, upcoming, none", models.ErrInvalidInput)
			}

			statuses, err := db.CompanyStatuses(a.db, a.now())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSTATUS\tLAST COMMUNICATION\tNEXT DUE")
			fmt.Fprintln(w, "----\t------\t------------------\t--------")
			shown := 0
			for _, cs := range statuses {
				if filter != "" && string(cs.Status) != filter {
					continue
				}
				shown++
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", cs.Name, cs.Status, lastLabel(cs.Latest), dateLabel(cs.NextDate))
			}
			w.Flush()

			if shown == 0 {
				fmt.Fprintln(out, "No companies found")
				return nil
			}

			s := status.Summarize(statuses)
			fmt.Fprintf(out, "\n%d companies: %d overdue, %d due today, %d upcoming, %d never contacted\n",
				s.Total, s.Overdue, s.Due, s.Upcoming, s.None)
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "status", "", "Only show overdue, due, upcoming, or none")
	return cmd
}

func newNotificationsCmd(a *app) *cobra.Command {
	var readID string
	var all, unreadOnly bool

	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notifs"},
		Short:   "List reminders for overdue and due companies",
		Long:    "List reminders for overdue and due companies, optionally marking them read." + ephemeralNote,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := db.SyncNotifications(a.db, a.now()); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case all:
				if err := db.MarkAllNotificationsRead(a.db); err != nil {
					return err
				}
				fmt.Fprintln(out, "✓ All notifications marked as read")
			case readID != "":
				ok, err := db.MarkNotificationRead(a.db, readID)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("%w: notification %s", models.ErrNotFound, readID)
				}
				fmt.Fprintf(out, "✓ Marked %s as read\n", readID)
			}
			if all || readID != "" {
				printEphemeralHint(cmd)
			}

			notifications, err := db.ListNotifications(a.db)
			if err != nil {
				return err
			}
			return printNotifications(out, notifications, unreadOnly)
		},
	}

	cmd.Flags().StringVar(&readID, "read", "", "Mark the notification with this ID as read")
	cmd.Flags().BoolVar(&all, "all", false, "Mark every notification as read")
	cmd.Flags().BoolVar(&unreadOnly, "unread", false, "Only list unread notifications")
	return cmd
}

func printNotifications(out io.Writer, notifications []models.Notification, unreadOnly bool) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, " \tID\tTITLE\tMESSAGE")
	fmt.Fprintln(w, " \t--\t-----\t-------")
	unread := 0
	for _, n := range notifications {
		if !n.Read {
			unread++
		} else if unreadOnly {
			continue
		}
		marker := " "
		if !n.Read {
			marker = "●"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", marker, n.ID, n.Title, n.Message)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d unread\n", unread)
	return nil
}

func validStatus(s string) bool {
	switch models.Status(s) {
	case models.StatusOverdue, models.StatusDue, models.StatusUpcoming, models.StatusNone:
		return true
	}
	return false
}

func lastLabel(c *models.Communication) string {
	if c == nil {
		return "-"
	}
	return fmt.Sprintf("%s (%s)", c.Type, c.Date.Format(status.DayLayout))
}

func dateLabel(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(status.DayLayout)
}
