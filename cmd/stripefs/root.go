package main

// This file contains the root command and the shared flags/helpers every
// subcommand needs: the OSD-root directory, the stripe geometry, and the
// per-invocation OSD-down simulation flags.
//
// It includes:
//   - rootCmd and Execute
//   - policy(): builds a stripe.Policy from flags
//   - openStore(): opens the disk-backed OSD store and applies --down flags

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/leon1227/xtreemfs/osd"
	"github.com/leon1227/xtreemfs/stripe"
)

var (
	rootDir        string
	stripeSize     int
	width          int
	parityWidth    int
	compress       bool
	downOSDs       []int
	verbose        bool
	rootCmd        = &cobra.Command{
		Use:   "stripefs",
		Short: "Drive an erasure-coded OSD store from the command line",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
			return nil
		},
	}
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rootDir, "root", "./stripefs-data", "directory the OSD store is rooted at")
	flags.IntVar(&stripeSize, "stripe-size", 65536, "per-object chunk size in bytes, a multiple of 1024")
	flags.IntVar(&width, "width", 3, "total objects per stripe line (data + parity)")
	flags.IntVar(&parityWidth, "parity-width", 1, "parity objects per line (only 1 is supported)")
	flags.BoolVar(&compress, "compress", false, "zstd-compress particles before they hit disk")
	flags.IntSliceVar(&downOSDs, "down", nil, "OSD indices to simulate as unavailable for this invocation")
	flags.BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(writeCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(rebuildCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func policy() stripe.Policy {
	return stripe.NewPolicy(stripeSize, width, parityWidth)
}

func openStore() (*osd.Store, error) {
	var opts []osd.Option
	if compress {
		opts = append(opts, osd.WithCompression())
	}
	store, err := osd.NewDiskStore(rootDir, width, opts...)
	if err != nil {
		return nil, fmt.Errorf("opening store at %s: %w", rootDir, err)
	}
	for _, i := range downOSDs {
		store.SetAvailable(uint32(i), false)
	}
	return store, nil
}
