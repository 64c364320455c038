package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"golang.org/x/text/unicode/runenames"

	"github.com/axiomhq/bytesize"
)

func newTokensCmd(a *app) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "tokens [text]",
		Short: "Show how text is split into tokens",
		Long:  "Shows how text is split into tokens. Text starting with '-' must follow -- or come on stdin.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(cmd, args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if verbose {
				spew.Fdump(out, a.engine.Tokens(text))
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KIND\tBYTES\tTEXT\tTOKEN")
			var total int
			a.engine.Scan(text, func(t bytesize.Token, covered string) bool {
				token := t.String()
				if t.Kind == bytesize.KindUnicode {
					token += " " + runenames.Name(t.Rune)
				}
				fmt.Fprintf(tw, "%v\t%d\t%q\t%s\n", t.Kind, t.EncodedLen(), covered, token)
				total += t.EncodedLen()
				return true
			})
			fmt.Fprintf(tw, "\t%d\t%d bytes in\t\n", total, len(text))
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Dump the token values")
	return cmd
}
