package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dukerupert/chorewheel/internal/model"
	"github.com/dukerupert/chorewheel/internal/rotation"
)

var (
	dueResident int64
	dueDate     string
)

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "List tasks due on a day",
	RunE:  runDue,
}

func init() {
	dueCmd.Flags().Int64VarP(&dueResident, "resident", "r", 0, "only tasks owned by this resident id")
	dueCmd.Flags().StringVarP(&dueDate, "date", "d", "", "day to check, DD/MM/YYYY (default today)")
}

func runDue(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	date := a.svc.Today()
	if dueDate != "" {
		if date, err = model.ParseDisplay(dueDate); err != nil {
			return err
		}
	}

	var due []rotation.TaskView
	if dueResident != 0 {
		due, err = a.svc.DueForResident(cmd.Context(), dueResident, date)
	} else {
		due, err = a.svc.DueOn(cmd.Context(), date)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(due) == 0 {
		fmt.Fprintf(out, "Nothing due on %s.\n", date)
		return nil
	}
	writeDue(out, date, due)
	return nil
}

func writeDue(w io.Writer, date model.Date, due []rotation.TaskView) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "TASK\tOWNER\tDUE\tEVERY\n")
	for _, v := range due {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", v.Name, v.OwnerName, dueLabel(v.NextDueDate, date), interval(v.IntervalDays))
	}
	tw.Flush()
}

func dueLabel(next, today model.Date) string {
	if next == today {
		return "today"
	}
	return humanize.RelTime(next.Time(), today.Time(), "overdue", "ahead")
}

func interval(days int) string {
	if days == 1 {
		return "day"
	}
	return humanize.Comma(int64(days)) + " days"
}
