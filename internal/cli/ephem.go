package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/banshee-data/microlens/internal/ephem"
)

var ephemCmd = &cobra.Command{
	Use:   "ephem",
	Short: "Manage the ephemeris database backing projection transforms",
}

type ephemImportFlags struct {
	db       string
	observer string
	input    string
}

var ephemImportOpts ephemImportFlags

var ephemImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import observer state samples from a JSON file",
	Long:  "Reads a JSON array of {\"mjd\": ..., \"pos_au\": [x,y,z], \"vel_kms\": [x,y,z]}\nsamples and inserts them as one batch.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEphemImport(ephemImportOpts, cmd.OutOrStdout())
	},
}

type ephemCoversFlags struct {
	db       string
	observer string
	mjd      float64
}

var ephemCoversOpts ephemCoversFlags

var ephemCoversCmd = &cobra.Command{
	Use:   "covers",
	Short: "Check whether the database covers an epoch for an observer",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEphemCovers(ephemCoversOpts, cmd.OutOrStdout())
	},
}

func init() {
	f := ephemImportCmd.Flags()
	f.StringVar(&ephemImportOpts.db, "db", "", "sqlite ephemeris database path")
	f.StringVar(&ephemImportOpts.observer, "observer", "", "observer the samples belong to")
	f.StringVar(&ephemImportOpts.input, "input", "-", "input JSON sample file (- for stdin)")

	f = ephemCoversCmd.Flags()
	f.StringVar(&ephemCoversOpts.db, "db", "", "sqlite ephemeris database path")
	f.StringVar(&ephemCoversOpts.observer, "observer", "", "observer to check")
	f.Float64Var(&ephemCoversOpts.mjd, "mjd", 0, "epoch to check (MJD)")

	ephemCmd.AddCommand(ephemImportCmd)
	ephemCmd.AddCommand(ephemCoversCmd)
	rootCmd.AddCommand(ephemCmd)
}

type ephemSample struct {
	MJD float64    `json:"mjd"`
	Pos [3]float64 `json:"pos_au"`
	Vel [3]float64 `json:"vel_kms"`
}

func readEphemSamples(path string) ([]ephem.State, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var samples []ephemSample
	if err := json.NewDecoder(r).Decode(&samples); err != nil {
		return nil, fmt.Errorf("decode ephemeris samples from %s: %w", path, err)
	}
	states := make([]ephem.State, len(samples))
	for i, s := range samples {
		states[i] = ephem.State{MJD: s.MJD, Pos: s.Pos, Vel: s.Vel}
	}
	return states, nil
}

func runEphemImport(flags ephemImportFlags, out io.Writer) error {
	if flags.db == "" || flags.observer == "" {
		return usageErrorf("--db and --observer are required")
	}
	states, err := readEphemSamples(flags.input)
	if err != nil {
		return err
	}
	store, err := ephem.OpenStore(flags.db)
	if err != nil {
		return err
	}
	defer store.Close()

	importID, err := store.Import(flags.observer, states)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "imported %d samples for %s (batch %s)\n", len(states), flags.observer, importID)
	return nil
}

func runEphemCovers(flags ephemCoversFlags, out io.Writer) error {
	if flags.db == "" || flags.observer == "" {
		return usageErrorf("--db and --observer are required")
	}
	store, err := ephem.OpenStore(flags.db)
	if err != nil {
		return err
	}
	defer store.Close()

	if store.Covers(flags.observer, flags.mjd) {
		fmt.Fprintf(out, "%s covered at MJD %v\n", flags.observer, flags.mjd)
		return nil
	}
	return fmt.Errorf("%s not covered at MJD %v", flags.observer, flags.mjd)
}
