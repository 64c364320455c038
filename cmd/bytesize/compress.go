package main

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// inputText returns the single argument, or all of stdin when there is none.
func inputText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}

// inputLines returns the lines of the named files, or of stdin when no file
// is named.
func inputLines(cmd *cobra.Command, paths []string) ([]string, error) {
	if len(paths) == 0 {
		return readLines(cmd.InOrStdin())
	}
	var lines []string
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, err
		}
		l, err := readLines(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		lines = append(lines, l...)
	}
	return lines, nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(nil, 1<<20)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

func newCompressCmd(a *app) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "compress [text]",
		Short: "Compress text given as an argument or on stdin",
		Long:  "Compresses text given as an argument or on stdin. Text starting with '-' must follow -- or come on stdin.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(cmd, args)
			if err != nil {
				return err
			}
			out := a.engine.Compress(text)
			a.log.WithField("in", len(text)).WithField("out", len(out)).Debug("compressed")
			if raw {
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(out))
			return err
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Write raw bytes instead of hex")
	return cmd
}

func newDecompressCmd(a *app) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "decompress [hex]",
		Short: "Decompress hex given as an argument or on stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := inputText(cmd, args)
			if err != nil {
				return err
			}
			src := []byte(in)
			if !raw {
				if src, err = hex.DecodeString(strings.TrimSpace(in)); err != nil {
					return fmt.Errorf("invalid hex input: %w", err)
				}
			}
			text, err := a.engine.Decompress(src)
			if err != nil {
				return err
			}
			if raw {
				_, err = io.WriteString(cmd.OutOrStdout(), text)
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Read raw bytes instead of hex and write the text unchanged")
	return cmd
}
