package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/bft-labs/qrship/pkg/fountain"
)

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Describe frames read from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := inspectFrames(cmd.InOrStdin())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderFrameTable(rows))
			return nil
		},
	}
}

// frameRow describes one input line.
type frameRow struct {
	line int
	frag fountain.Fragment
	err  error
}

func inspectFrames(r io.Reader) ([]frameRow, error) {
	var rows []frameRow
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4<<20)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		frag, err := fountain.ParseFrame(line)
		rows = append(rows, frameRow{line: n, frag: frag, err: err})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read frames: %w", err)
	}
	return rows, nil
}

func renderFrameTable(rows []frameRow) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Line", "Seq", "Total", "Kind", "Covers", "Bytes", "Digest", "Max Degree", "Status"})

	for _, r := range rows {
		if r.err != nil {
			tw.AppendRow(table.Row{r.line, "", "", "", "", "", "", "", r.err.Error()})
			continue
		}
		kind := "mixed"
		if r.frag.IsPure() {
			kind = "pure"
		}
		tw.AppendRow(table.Row{
			r.line,
			r.frag.SeqNum,
			r.frag.Total,
			kind,
			formatIndexes(r.frag.Indexes()),
			r.frag.PayloadLen,
			fmt.Sprintf("%08x", r.frag.Digest),
			r.frag.MaxDegree,
			"ok",
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 8, Align: text.AlignRight},
	})
	return tw.Render()
}

func formatIndexes(idx []int) string {
	parts := make([]string, len(idx))
	for i, v := range idx {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
