package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/axiomhq/bytesize"
)

func newSuggestCmd(a *app) *cobra.Command {
	var spaces bool
	cmd := &cobra.Command{
		Use:   "suggest [file...]",
		Short: "Suggest custom words for a sample of messages, one per line",
		Long: "Picks custom words that shrink the sample the most and prints " +
			"an engine config using them.",
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := inputLines(cmd, args)
			if err != nil {
				return err
			}
			cfg := bytesize.Config{
				CustomWords:  bytesize.TrainCustom(lines, spaces),
				CustomSpaces: spaces,
			}

			before, after := 0, 0
			trained := cfg.Builder().Engine()
			base := bytesize.EmptyBuilder().SetCustomSpaces(spaces).Engine()
			for _, l := range lines {
				before += len(base.Compress(l))
				after += len(trained.Compress(l))
			}
			a.log.WithFields(logrus.Fields{
				"messages": len(lines),
				"words":    len(cfg.CustomWords),
				"before":   before,
				"after":    after,
			}).Info("suggested custom words")

			out, err := cfg.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().BoolVar(&spaces, "spaces", false, "Train for an engine with custom spaces")
	return cmd
}
