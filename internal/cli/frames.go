package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/banshee-data/microlens/internal/adapters"
	"github.com/banshee-data/microlens/internal/convert"
	"github.com/banshee-data/microlens/internal/model"
	"github.com/banshee-data/microlens/internal/units"
)

type framesFlags struct {
	source   string
	input    string
	observer string
	epochs   string
}

var framesOpts framesFlags

var framesCmd = &cobra.Command{
	Use:   "frames",
	Short: "Show the canonical model and the frames its series carry",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFrames(framesOpts, cmd.OutOrStdout())
	},
}

var packagesCmd = &cobra.Command{
	Use:   "packages",
	Short: "List the packages with registered adapters",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range adapters.Packages() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func init() {
	f := framesCmd.Flags()
	f.StringVar(&framesOpts.source, "source", "", "package the input parameters belong to")
	f.StringVar(&framesOpts.input, "input", "-", "input JSON parameter file (- for stdin)")
	f.StringVar(&framesOpts.observer, "observer", model.ObserverEarth, "observer the input parameters were fit for")
	f.StringVar(&framesOpts.epochs, "epochs", "", "epoch grid start:end:step (MJD) to materialize trajectories")
	rootCmd.AddCommand(framesCmd)
	rootCmd.AddCommand(packagesCmd)
}

func runFrames(flags framesFlags, out io.Writer) error {
	if flags.source == "" {
		return usageErrorf("--source is required")
	}
	params, err := readParams(flags.input)
	if err != nil {
		return err
	}
	epochs, err := parseEpochs(flags.epochs)
	if err != nil {
		return err
	}
	opts, cleanup, err := converterOptions()
	if err != nil {
		return err
	}
	defer cleanup()

	c, err := convert.Load(flags.source, params, flags.observer, epochs, opts...)
	if err != nil {
		return err
	}
	m := c.Model()

	fmt.Fprintf(out, "kind: %s\n", m.Kind())
	fmt.Fprintln(out, "scalars:")
	scalars := m.Scalars()
	for _, name := range append(append([]string{}, model.CanonicalScalars...),
		"piEE", "piEN", "mu_rel_e", "mu_rel_n", "sep", "q", "alpha", "thetaE") {
		if v, ok := scalars[name]; ok {
			fmt.Fprintf(out, "  %-10s %12.6f  [%s]\n", name, v, units.ScalarUnit(name))
		}
	}
	fmt.Fprintln(out, "frames:")
	for _, fc := range m.Frames() {
		fmt.Fprintf(out, "  %s\n", fc)
	}
	if names := m.SeriesNames(); len(names) > 0 {
		fmt.Fprintln(out, "series:")
		for _, name := range names {
			fmt.Fprintf(out, "  %s\n", name)
		}
	}
	return nil
}
