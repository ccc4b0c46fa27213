package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/NetPo4ki/go-watcher/internal/scenario"
)

type tableFormatter struct {
	options *Options
}

func (f *tableFormatter) FormatReports(w io.Writer, reports []scenario.Report) error {
	if len(reports) == 0 {
		_, err := fmt.Fprintln(w, "No scenarios run")
		return err
	}
	colors := NewColorScheme(w, f.options.NoColor)

	table := newTable(w)
	headers := []string{"SCENARIO", "STATUS", "SUBMITTED", "VALUES", "ERRORS", "CANCELLED", "DURATION"}
	if f.options.Wide {
		headers = append(headers, "DETAIL")
	}
	if !colors.Disabled {
		for i, h := range headers {
			headers[i] = colors.Header("%s", h)
		}
	}
	table.SetHeader(headers)

	for _, r := range reports {
		row := []string{
			colors.Name("%s", r.Scenario),
			colors.Status(r.Passed),
			strconv.Itoa(r.Submitted),
			strconv.Itoa(r.Values),
			strconv.Itoa(r.Errors),
			strconv.Itoa(r.Cancelled),
			colors.Duration("%s", r.Duration.Round(time.Microsecond)),
		}
		if f.options.Wide {
			row = append(row, r.Detail)
		}
		table.Append(row)
	}
	table.Render()

	return printSummary(w, reports, colors)
}

// newTable returns a borderless, tab-padded table.
func newTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)
	return table
}

func printSummary(w io.Writer, reports []scenario.Report, colors *ColorScheme) error {
	var passed, failed int
	var total time.Duration
	for _, r := range reports {
		if r.Passed {
			passed++
		} else {
			failed++
		}
		total += r.Duration
	}
	failedText := fmt.Sprintf("%d failed", failed)
	if failed > 0 {
		failedText = colors.Error("%s", failedText)
	}
	_, err := fmt.Fprintf(w, "\nSummary: %s, %s, %s\n",
		colors.Success("%d passed", passed),
		failedText,
		colors.Duration("total=%s", total.Round(time.Microsecond)),
	)
	return err
}
