// Package cli implements the microlens command line: loading package-native
// event parameters, converting them between packages, inspecting frames and
// rendering trajectory plots.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/banshee-data/microlens/internal/convert"
	"github.com/banshee-data/microlens/internal/ephem"
	"github.com/banshee-data/microlens/internal/version"
)

var rootCmd = &cobra.Command{
	Use:          "microlens",
	Short:        "Convert gravitational microlensing event models between packages",
	Long:         "microlens loads package-native event parameters into a canonical model\nand converts them to other packages' conventions, with explicit frame\nhandling for parallax and spacecraft observers.",
	SilenceUsage: true,
}

// usageError marks failures the caller can fix on the command line. They
// exit with status 2; everything else exits 1.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usageErrorf(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// Execute runs the root command and exits the process.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var ue *usageError
		if errors.As(err, &ue) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.Version = fmt.Sprintf("%s (%s, built %s)", version.Version, version.GitSHA, version.BuildTime)

	rootCmd.PersistentFlags().String("config", "", "config file (default .microlens.yaml)")
	rootCmd.PersistentFlags().String("ephem", "", "sqlite ephemeris database for projection transforms")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log conversion steps")
	_ = viper.BindPFlag("ephem", rootCmd.PersistentFlags().Lookup("ephem"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".microlens")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("MICROLENS")
	viper.AutomaticEnv()

	// Running without a config file is the normal case.
	_ = viper.ReadInConfig()
}

// converterOptions assembles load options from the global flags: a quiet
// logger unless verbose, and an ephemeris store when one is configured.
// The returned cleanup closes the store.
func converterOptions() ([]convert.Option, func(), error) {
	var opts []convert.Option
	cleanup := func() {}

	if !viper.GetBool("verbose") {
		opts = append(opts, convert.WithLogger(log.New(io.Discard, "", 0)))
	}
	if path := viper.GetString("ephem"); path != "" {
		store, err := ephem.OpenStore(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open ephemeris database %s: %w", path, err)
		}
		opts = append(opts, convert.WithEphemeris(store))
		cleanup = func() { _ = store.Close() }
	}
	return opts, cleanup, nil
}
