package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"microwave/internal/models"
	"microwave/internal/service"

	"github.com/spf13/cobra"
)

func newLogsCmd(configPath *string) *cobra.Command {
	var from, to, typ, operator string
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print stored oven events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := service.LogFilter{Type: typ, Operator: operator}
			var err error
			if filter.From, err = parseFlagTime(from, false); err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			if filter.To, err = parseFlagTime(to, true); err != nil {
				return fmt.Errorf("--to: %w", err)
			}

			_, conn, repos, err := openStore(*configPath)
			if err != nil {
				return err
			}
			defer conn.Close()

			events, err := service.NewEventLogService(repos.EventRepo).List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return printEvents(cmd.OutOrStdout(), events)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "start of range (RFC3339 or YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "end of range (RFC3339 or YYYY-MM-DD, date-only means end of day)")
	cmd.Flags().StringVar(&typ, "type", "", "event type, e.g. START or DOOR_OPEN")
	cmd.Flags().StringVar(&operator, "operator", "", "only events from this operator's commands")
	return cmd
}

// parseFlagTime parses RFC3339 or a bare date; a bare date used as an upper
// bound covers the whole day.
func parseFlagTime(s string, endOfDay bool) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q, use RFC3339 or YYYY-MM-DD", s)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t.UTC(), nil
}

func printEvents(w io.Writer, events []models.OvenEvent) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tTYPE\tOPERATOR\tDESCRIPTION")
	for _, e := range events {
		who := e.Operator
		if who == "" {
			who = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.OccurredAt.Format(time.RFC3339), e.Type, who, e.Description)
	}
	return tw.Flush()
}
