package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/banshee-data/microlens/internal/convert"
	"github.com/banshee-data/microlens/internal/model"
)

type convertFlags struct {
	source         string
	target         string
	input          string
	output         string
	observer       string
	targetObserver string
	origin         string
	epochs         string
}

var convertOpts convertFlags

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert native parameters from one package to another",
	Example: `  microlens convert --source bagle --target gulls --input event.json
  microlens convert --source bagle --target gulls --target-observer roman_l2 \
      --ephem ephem.db --input event.json --output roman.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(convertOpts, cmd.OutOrStdout())
	},
}

func init() {
	f := convertCmd.Flags()
	f.StringVar(&convertOpts.source, "source", "", "package the input parameters belong to")
	f.StringVar(&convertOpts.target, "target", "", "package to convert to")
	f.StringVar(&convertOpts.input, "input", "-", "input JSON parameter file (- for stdin)")
	f.StringVar(&convertOpts.output, "output", "-", "output JSON file (- for stdout)")
	f.StringVar(&convertOpts.observer, "observer", model.ObserverEarth, "observer the input parameters were fit for")
	f.StringVar(&convertOpts.targetObserver, "target-observer", "", "observer for the output (default: same as --observer)")
	f.StringVar(&convertOpts.origin, "origin", model.OriginLens1AtT0, "coordinate origin for the output")
	f.StringVar(&convertOpts.epochs, "epochs", "", "epoch grid start:end:step (MJD) to materialize trajectories")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(flags convertFlags, out io.Writer) error {
	if flags.source == "" || flags.target == "" {
		return usageErrorf("--source and --target are required")
	}
	if flags.targetObserver == "" {
		flags.targetObserver = flags.observer
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
	payload, err := c.DumpParams(flags.target, flags.targetObserver, flags.origin)
	if err != nil {
		return err
	}
	return writeJSON(out, flags.output, payload)
}
