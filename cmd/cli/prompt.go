package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/yourusername/vid2pdf-go/internal/domain"
)

// promptInterval asks until the operator enters a positive whole number
func promptInterval(in *bufio.Reader, out io.Writer) (int, error) {
	for {
		fmt.Fprint(out, "Screenshot interval in seconds: ")
		line, err := in.ReadString('\n')
		if value, convErr := strconv.Atoi(strings.TrimSpace(line)); convErr == nil && value > 0 {
			return value, nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return 0, fmt.Errorf("%w: no interval given", domain.ErrCancelled)
			}
			return 0, err
		}
		fmt.Fprintln(out, "Please enter a positive whole number.")
	}
}

// MenuChooser lets the operator pick an option from a numbered table
type MenuChooser struct {
	in  *bufio.Reader
	out io.Writer
}

// NewMenuChooser creates a chooser reading answers from in
func NewMenuChooser(in *bufio.Reader, out io.Writer) *MenuChooser {
	return &MenuChooser{in: in, out: out}
}

// Choose implements domain.Chooser. Entering q cancels the run.
func (m *MenuChooser) Choose(ctx context.Context, meta *domain.VideoMetadata, sel domain.Selection) (domain.SelectionOption, error) {
	fmt.Fprintf(m.out, "\n%s\n", meta.Title)
	fmt.Fprintln(m.out, renderOptions(sel))
	if sel.CompactUnavailable {
		fmt.Fprintln(m.out, "No smaller variant is available.")
	}

	for {
		if err := ctx.Err(); err != nil {
			return domain.SelectionOption{}, err
		}
		fmt.Fprintf(m.out, "Choose 1-%d (q to quit): ", len(sel.Options))
		line, err := m.in.ReadString('\n')
		answer := strings.TrimSpace(line)
		if strings.EqualFold(answer, "q") {
			return domain.SelectionOption{}, domain.ErrCancelled
		}
		if n, convErr := strconv.Atoi(answer); convErr == nil && n >= 1 && n <= len(sel.Options) {
			return sel.Options[n-1], nil
		}
		if err != nil {
			return domain.SelectionOption{}, fmt.Errorf("%w: no option chosen", domain.ErrCancelled)
		}
		fmt.Fprintln(m.out, "Invalid choice.")
	}
}

// renderOptions draws the selection as a table, one numbered row per option
func renderOptions(sel domain.Selection) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Type", "Resolution", "Size", "Est. PDF", "Codec"})

	estimate := domain.FormatEstimate(sel.EstimatedDocumentKB)
	for i, opt := range sel.Options {
		tw.AppendRow(table.Row{i + 1, string(opt.Category), opt.Resolution, opt.SizeLabel, estimate, opt.Codec})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}
