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
	readOffset int64
	readSize   int
	readOutput string

	readCmd = &cobra.Command{
		Use:   "read",
		Short: "Translate, dispatch, and reconcile a read, reconstructing from parity if needed",
		RunE:  runRead,
	}
)

func init() {
	flags := readCmd.Flags()
	flags.Int64Var(&readOffset, "offset", 0, "file offset to read from")
	flags.IntVar(&readSize, "size", 0, "number of bytes to read (required)")
	flags.StringVar(&readOutput, "output", "-", "file to write the result to (default stdout)")
	_ = readCmd.MarkFlagRequired("size")
}

func runRead(cmd *cobra.Command, args []string) error {
	p := policy()
	buf := make([]byte, readSize)
	ops, _ := stripe.TranslateRead(buf, readOffset, readSize, p)

	store, err := openStore()
	if err != nil {
		return err
	}
	d := dispatch.New(store, logrus.StandardLogger())
	successful := d.Read(cmd.Context(), ops)
	received := dispatch.ReceivedBytes(ops, successful, p.Width)

	n, err := stripe.ProcessReads(ops, successful, p, received, readOffset)
	if err != nil {
		return fmt.Errorf("reconciling read: %w", err)
	}

	if readOutput == "-" {
		_, err = os.Stdout.Write(buf[:n])
		return err
	}
	return os.WriteFile(readOutput, buf[:n], 0o644)
}
