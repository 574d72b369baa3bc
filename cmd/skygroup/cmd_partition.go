package main

import (
	"fmt"

	"github.com/TrevorS/skygroup"
	"github.com/spf13/cobra"
)

type partitionOptions struct {
	batchSize int
	nbatches  int
	seed      uint64
	out       string
}

func newPartitionCmd(a *app) *cobra.Command {
	opts := partitionOptions{}
	def := skygroup.DefaultPartitionConfig()

	cmd := &cobra.Command{
		Use:   "partition <catalog.csv>",
		Short: "split a catalog into compact batches",
		Long: `
Splits a catalog into spatially compact batches of roughly --batch-size
objects with k-means, and writes x, y and batch_id for every object to --out,
or to standard output.
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := readCatalogFile(args[0])
			if err != nil {
				return fmt.Errorf("reading catalog %s: %w", args[0], err)
			}

			p, err := skygroup.PartitionIntoBatches(cat.X, cat.Y, skygroup.PartitionConfig{
				BatchSize: opts.batchSize,
				NBatches:  opts.nbatches,
				Seed:      opts.seed,
				Logger:    a.log,
			})
			if err != nil {
				return err
			}

			header := [3]string{cat.Columns[0], cat.Columns[1], "batch_id"}
			if opts.out == "" {
				return writeLabelled(cmd.OutOrStdout(), header, cat.X, cat.Y, p.Labels)
			}
			if err := writeLabelledFile(opts.out, header, cat.X, cat.Y, p.Labels); err != nil {
				return fmt.Errorf("writing %s: %w", opts.out, err)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.batchSize, "batch-size", def.BatchSize, "target number of objects per batch")
	f.IntVar(&opts.nbatches, "nbatches", 0, "number of batches, overriding --batch-size when > 0")
	f.Uint64Var(&opts.seed, "seed", def.Seed, "seed for the initial batch centres")
	f.StringVarP(&opts.out, "out", "o", "", "output file (default standard output)")

	return cmd
}
