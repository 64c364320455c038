package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/axiomhq/bytesize"
)

func newEngineCmd(a *app) *cobra.Command {
	var write, read string
	cmd := &cobra.Command{
		Use:   "engine",
		Short: "Print the engine configuration or save it as a descriptor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := a.engine
			if read != "" {
				f, err := os.Open(read)
				if err != nil {
					return err
				}
				defer f.Close()
				e = new(bytesize.Engine)
				if _, err := e.ReadFrom(f); err != nil {
					return fmt.Errorf("%s: %w", read, err)
				}
			}
			if write != "" {
				f, err := os.Create(write)
				if err != nil {
					return err
				}
				n, err := e.WriteTo(f)
				if cerr := f.Close(); err == nil {
					err = cerr
				}
				if err != nil {
					return err
				}
				a.log.WithField("path", write).WithField("bytes", n).Info("wrote descriptor")
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "fingerprint: %016x\n", e.Fingerprint())
			fmt.Fprintf(out, "custom_spaces: %t\n", e.CustomSpaces())
			fmt.Fprintf(out, "custom_capacity: %d\n", e.CustomCapacity())
			words := e.CustomWords()
			fmt.Fprintf(out, "custom_words: %d\n", len(words))
			for i, w := range words {
				mark := ""
				if i >= e.CustomCapacity() {
					mark = " (unused)"
				}
				fmt.Fprintf(out, "  %2d %q%s\n", i, w, mark)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&write, "write", "", "Write the engine descriptor to this file")
	cmd.Flags().StringVar(&read, "read", "", "Load the engine from a descriptor file instead of the config")
	return cmd
}
