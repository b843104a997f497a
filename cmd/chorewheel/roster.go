package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Show the rotation order",
	RunE:  runRoster,
}

var rosterAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Append a resident to the rotation",
	Args:  cobra.ExactArgs(1),
	RunE:  runRosterAdd,
}

func init() {
	rosterCmd.AddCommand(rosterAddCmd)
}

func runRoster(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	roster, err := a.svc.Roster(cmd.Context())
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "#\tID\tNAME\tSTATUS\n")
	for i, r := range roster.Residents {
		status := "home"
		if r.InTravel {
			status = "traveling"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", humanize.Ordinal(i+1), r.ID, r.Name, status)
	}
	tw.Flush()
	fmt.Fprintf(cmd.OutOrStdout(), "roster version %d\n", roster.Version)
	return nil
}

func runRosterAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	r, err := a.svc.AddResident(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	roster, err := a.svc.Roster(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %s as %s in rotation (id %d).\n", r.Name, humanize.Ordinal(len(roster.Residents)), r.ID)
	return nil
}
