package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/leon1227/xtreemfs/dispatch"
	"github.com/leon1227/xtreemfs/stripe"
)

var (
	writeInput  string
	writeOffset int64

	writeCmd = &cobra.Command{
		Use:   "write",
		Short: "Translate and dispatch a stripe-line-aligned write",
		RunE:  runWrite,
	}
)

func init() {
	flags := writeCmd.Flags()
	flags.StringVar(&writeInput, "input", "", "file to write (required; use - for stdin)")
	flags.Int64Var(&writeOffset, "offset", 0, "file offset to write at; must be stripe-line aligned")
	_ = writeCmd.MarkFlagRequired("input")
}

func runWrite(cmd *cobra.Command, args []string) error {
	data, err := readInput(writeInput)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	p := policy()
	ops, err := stripe.TranslateWrite(data, writeOffset, p)
	if err != nil {
		return fmt.Errorf("translating write: %w", err)
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	d := dispatch.New(store, logrus.StandardLogger())
	if err := d.Write(cmd.Context(), ops); err != nil {
		return fmt.Errorf("dispatching write: %w", err)
	}

	logrus.WithFields(logrus.Fields{"bytes": len(data), "offset": writeOffset, "ops": len(ops)}).Info("write complete")
	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return os.ReadFile("/dev/stdin")
	}
	return os.ReadFile(path)
}
