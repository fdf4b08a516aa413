package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bft-labs/qrship/pkg/fountain"
)

func newFramesCmd(a *app) *cobra.Command {
	var (
		count int
		start uint32
	)

	cmd := &cobra.Command{
		Use:   "frames <file>",
		Short: "Print encoded frames, one per line",
		Long: "Print encoded frames of a file, one per line. By default one full loop of\n" +
			"plain fragments is printed. Use --start past the fragment count to print\n" +
			"mixed frames only.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read payload: %w", err)
			}
			enc, err := fountain.Split(payload, a.cfg.FragmentLen, uint16(a.cfg.MaxDegree))
			if err != nil {
				return fmt.Errorf("split payload: %w", err)
			}
			if count <= 0 {
				count = enc.Total()
			}
			return writeFrames(cmd.OutOrStdout(), enc, start, count)
		},
	}

	addCodecFlags(cmd, &a.cfg)
	cmd.Flags().IntVar(&count, "count", 0, "number of frames (default: number of fragments)")
	cmd.Flags().Uint32Var(&start, "start", 0, "sequence number of the first frame")
	return cmd
}

func writeFrames(w io.Writer, enc *fountain.Encoder, start uint32, count int) error {
	bw := bufio.NewWriter(w)
	for i := 0; i < count; i++ {
		frame := fountain.EncodeFrame(enc.Fragment(start + uint32(i)))
		if _, err := fmt.Fprintln(bw, frame); err != nil {
			return err
		}
	}
	return bw.Flush()
}
