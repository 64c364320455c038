package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/axiomhq/bytesize"
)

// compressor compresses one message at a time.
type compressor interface {
	Name() string
	Compress(src, dst []byte) []byte
}

type engineCompressor struct{ e *bytesize.Engine }

func (c engineCompressor) Name() string { return "bytesize" }

func (c engineCompressor) Compress(src, dst []byte) []byte {
	return c.e.AppendCompress(dst, string(src))
}

type zstdCompressor struct {
	name string
	enc  *zstd.Encoder
}

func (c zstdCompressor) Name() string { return c.name }

func (c zstdCompressor) Compress(src, dst []byte) []byte { return c.enc.EncodeAll(src, dst) }

type s2Compressor struct{}

func (s2Compressor) Name() string { return "s2" }

func (s2Compressor) Compress(src, dst []byte) []byte {
	return append(dst, s2.EncodeBetter(nil, src)...)
}

func compressors(e *bytesize.Engine) ([]compressor, error) {
	fast, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	best, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedBestCompression),
		zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	return []compressor{
		engineCompressor{e},
		zstdCompressor{"zstd", fast},
		zstdCompressor{"zstd-best", best},
		s2Compressor{},
	}, nil
}

// messageStats sums the per-message compressed size of every compressor.
type messageStats struct {
	messages int
	in       int
	out      map[string]int
	lossy    int
}

func collectStats(e *bytesize.Engine, cs []compressor, lines []string) (*messageStats, error) {
	st := &messageStats{out: make(map[string]int)}
	var buf []byte
	for _, line := range lines {
		st.messages++
		st.in += len(line)
		for _, c := range cs {
			buf = c.Compress([]byte(line), buf[:0])
			st.out[c.Name()] += len(buf)
		}
		back, err := e.Decompress(e.Compress(line))
		if err != nil {
			return nil, err
		}
		if back != line {
			st.lossy++
		}
	}
	return st, nil
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats [file...]",
		Short: "Compare per-message compression against zstd and s2",
		Long: "Compresses every line of the input as a separate message and " +
			"reports the total size for bytesize, zstd and s2.",
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := inputLines(cmd, args)
			if err != nil {
				return err
			}
			cs, err := compressors(a.engine)
			if err != nil {
				return err
			}
			st, err := collectStats(a.engine, cs, lines)
			if err != nil {
				return err
			}
			if st.lossy > 0 {
				a.log.WithField("messages", st.lossy).Warn("messages with invalid UTF-8 do not round trip")
			}
			a.log.WithFields(logrus.Fields{"messages": st.messages, "bytes": st.in}).Info("stats")

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(tw, "CODEC\tBYTES\tRATIO\t")
			fmt.Fprintf(tw, "input\t%d\t1.000\t\n", st.in)
			for _, c := range cs {
				n := st.out[c.Name()]
				ratio := 0.0
				if st.in > 0 {
					ratio = float64(n) / float64(st.in)
				}
				fmt.Fprintf(tw, "%s\t%d\t%.3f\t\n", c.Name(), n, ratio)
			}
			return tw.Flush()
		},
	}
}
