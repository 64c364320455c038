package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/axiomhq/bytesize"
)

// app is the state shared by every subcommand. It is filled in by the root
// command's PersistentPreRunE.
type app struct {
	v      *viper.Viper
	cfg    *Config
	log    *logrus.Logger
	engine *bytesize.Engine
	closer func() error
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	var configFlag string

	rootCmd := &cobra.Command{
		Use:           "bytesize",
		Short:         "Compress short text messages with static dictionaries",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadConfig(a.v, configFlag)
			if err != nil {
				return err
			}
			a.cfg = cfg
			if a.log, a.closer, err = InitLogger(cfg, cmd.ErrOrStderr()); err != nil {
				return err
			}
			if err := cfg.Engine.Validate(); err != nil {
				return err
			}
			a.engine = cfg.Engine.Builder().SetLogger(a.log).Engine()
			a.log.WithFields(logrus.Fields{
				"fingerprint":   fmt.Sprintf("%016x", a.engine.Fingerprint()),
				"custom_words":  len(cfg.Engine.CustomWords),
				"custom_spaces": cfg.Engine.CustomSpaces,
			}).Debug("engine ready")
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.closer != nil {
				return a.closer()
			}
			return nil
		},
	}
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFlag, "config", "c", "", "Path to a YAML config file")
	flags.String("log-level", "", "Log level (trace, debug, info, warn, error)")
	flags.StringSlice("custom", nil, "Custom words, replacing the configured ones")
	flags.Bool("custom-spaces", false, "Let custom words match with a leading space")
	if err := bindFlags(a.v, flags, map[string]string{
		"log_level":            "log-level",
		"engine.custom_words":  "custom",
		"engine.custom_spaces": "custom-spaces",
	}); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(
		newCompressCmd(a),
		newDecompressCmd(a),
		newTokensCmd(a),
		newStatsCmd(a),
		newSuggestCmd(a),
		newEngineCmd(a),
		newServeCmd(a),
	)
	return rootCmd
}
