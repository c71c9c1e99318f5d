package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/leon1227/xtreemfs/heal"
)

var (
	rebuildOSD      int
	rebuildLineBase uint64

	rebuildCmd = &cobra.Command{
		Use:   "rebuild",
		Short: "Rebuild a single missing particle from its stripe-line siblings",
		RunE:  runRebuild,
	}
)

func init() {
	flags := rebuildCmd.Flags()
	flags.IntVar(&rebuildOSD, "osd", 0, "OSD index to rebuild the particle onto (required)")
	flags.Uint64Var(&rebuildLineBase, "line-base", 0, "base data object number of the stripe line (required)")
	_ = rebuildCmd.MarkFlagRequired("osd")
	_ = rebuildCmd.MarkFlagRequired("line-base")
}

func runRebuild(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	q := heal.NewQueue(ctx, store, policy(), 1, logrus.StandardLogger())
	if !q.Enqueue(heal.Job{OSDIndex: uint32(rebuildOSD), LineBase: rebuildLineBase}) {
		return fmt.Errorf("rebuild: job already queued")
	}
	q.Wait()
	return nil
}
