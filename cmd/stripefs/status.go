package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leon1227/xtreemfs/health"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show OSD health and degraded-mode guidance",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	report := health.Probe(cmd.Context(), store)
	if err := health.FormatDegradedModeError(report); err != nil {
		fmt.Println(err.Error())
		return nil
	}
	fmt.Println("all OSDs available")
	return nil
}
