package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"microwave/internal/models"
	"microwave/internal/service"

	"github.com/spf13/cobra"
)

func newStatusCmd(configPath *string) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print the last stored oven snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, conn, repos, err := openStore(*configPath)
			if err != nil {
				return err
			}
			defer conn.Close()

			st, err := service.NewMonitoringService(nil, repos.StateRepo).GetState(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(st)
			}
			printStatus(cmd.OutOrStdout(), st)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the snapshot as JSON")
	return cmd
}

func printStatus(w io.Writer, st models.OvenState) {
	food := st.SelectedFood
	if food == "" {
		food = "-"
	}
	door := "closed"
	if st.DoorOpen {
		door = "open"
	}
	fmt.Fprintf(w, "state:     %s\n", st.State)
	fmt.Fprintf(w, "time left: %s (%ds)\n", st.Display, st.TimeLeft)
	fmt.Fprintf(w, "door:      %s\n", door)
	fmt.Fprintf(w, "food:      %s\n", food)
	fmt.Fprintf(w, "start:     %t\n", st.StartReady)
	fmt.Fprintf(w, "panel:     %s\n", strings.ReplaceAll(st.Panel, "\n", " | "))
	if !st.UpdatedAt.IsZero() {
		fmt.Fprintf(w, "updated:   %s\n", st.UpdatedAt.Format("2006-01-02 15:04:05Z07:00"))
	}
}
