package main

import (
	"fmt"
	"os"

	"github.com/TrevorS/skygroup/telescope"
	"github.com/spf13/cobra"
)

type fovOptions struct {
	instrument  string
	detIX       int
	detIY       int
	x, y        float64
	orientation float64
	specs       string
}

func newFOVCmd(a *app) *cobra.Command {
	opts := fovOptions{}

	cmd := &cobra.Command{
		Use:   "fov",
		Short: "convert a detector pixel position to focal-plane and field-of-view coordinates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			inst, err := telescope.ParseInstrument(opts.instrument)
			if err != nil {
				return err
			}

			specs := telescope.DefaultSpecs()
			if opts.specs != "" {
				if specs, err = loadSpecsFile(opts.specs); err != nil {
					return fmt.Errorf("loading specs %s: %w", opts.specs, err)
				}
				a.log.Debug().Str("path", opts.specs).Msg("Loaded detector specs")
			}

			fx, fy, err := specs.FocalPlaneFromDetector(opts.x, opts.y, opts.detIX, opts.detIY, inst, opts.orientation)
			if err != nil {
				return err
			}
			fovX, fovY, err := specs.FOVFromFocalPlane(fx, fy, inst)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "focal plane (um): %.4f %.4f\n", fx, fy)
			fmt.Fprintf(w, "field of view (deg): %.9f %.9f\n", fovX, fovY)
			if inst == telescope.InstrumentVIS {
				fmt.Fprintf(w, "quadrant: %s\n", telescope.Quadrant(opts.x, opts.y, opts.detIY))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.instrument, "instrument", string(telescope.InstrumentVIS), "instrument (VIS, NISP)")
	f.IntVar(&opts.detIX, "det-ix", 1, "detector column, from 1")
	f.IntVar(&opts.detIY, "det-iy", 1, "detector row, from 1")
	f.Float64Var(&opts.x, "x", 0, "x pixel position on the detector")
	f.Float64Var(&opts.y, "y", 0, "y pixel position on the detector")
	f.Float64Var(&opts.orientation, "orientation", 0, "detector orientation relative to the focal plane, in radians")
	f.StringVar(&opts.specs, "specs", "", "YAML mission database export with detector specs")

	return cmd
}

func loadSpecsFile(path string) (*telescope.Specs, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return telescope.LoadSpecs(f)
}
