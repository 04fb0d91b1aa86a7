package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"github.com/trazeinos/ibex35-dashboard/internal/config"
	"github.com/trazeinos/ibex35-dashboard/internal/dataset"
	"github.com/trazeinos/ibex35-dashboard/internal/exporter"
	"github.com/trazeinos/ibex35-dashboard/internal/format"
	"github.com/trazeinos/ibex35-dashboard/internal/history"
	"github.com/trazeinos/ibex35-dashboard/internal/reshape"
	"github.com/trazeinos/ibex35-dashboard/pkg/contracts"
	"github.com/trazeinos/ibex35-dashboard/pkg/contracts/domain"
)

var errUsage = errors.New("usage")

// source resolves the dataset path shared by every command and loads it.
type source struct {
	file *string
	out  io.Writer
}

func (s source) path() string {
	if s.file != nil && *s.file != "" {
		return *s.file
	}
	if cfg, err := config.Load(); err == nil {
		return cfg.Data.SourceFile
	}
	return config.DefaultSourceFile
}

func (s source) load() (*domain.Dataset, error) {
	return dataset.LoadFile(s.path())
}

// writer returns the command writer, or a file when name is set.
func (s source) writer(name string) (io.Writer, func() error, error) {
	if name == "" || name == "-" {
		return s.out, func() error { return nil }, nil
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func commands(file *string, out io.Writer) []subcommands.Command {
	src := source{file: file, out: out}
	return []subcommands.Command{
		&tickersCmd{source: src},
		&pivotCmd{source: src},
		&historyCmd{source: src},
		&reportCmd{source: src},
		&versionCmd{out: out},
	}
}

// exit maps a command error to an exit status, printing it to stderr.
func exit(err error) subcommands.ExitStatus {
	if err == nil {
		return subcommands.ExitSuccess
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if errors.Is(err, errUsage) {
		return subcommands.ExitUsageError
	}
	return subcommands.ExitFailure
}

func renderMarkdown(w io.Writer, doc string) error {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(0),
	)
	if err != nil {
		return err
	}
	out, err := r.Render(doc)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

type tickersCmd struct {
	source
}

func (*tickersCmd) Name() string     { return "tickers" }
func (*tickersCmd) Synopsis() string { return "list the tickers in the dataset" }
func (*tickersCmd) Usage() string {
	return `ibexctl tickers

  Prints every ticker, sorted, one per line.
`
}

func (*tickersCmd) SetFlags(*flag.FlagSet) {}

func (c *tickersCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return exit(c.run())
}

func (c *tickersCmd) run() error {
	ds, err := c.load()
	if err != nil {
		return err
	}
	for _, t := range ds.Tickers() {
		if _, err := fmt.Fprintln(c.out, t); err != nil {
			return err
		}
	}
	return nil
}

type pivotCmd struct {
	source
	format string
	output string
	bom    bool
}

func (*pivotCmd) Name() string     { return "pivot" }
func (*pivotCmd) Synopsis() string { return "display the closing-price pivot" }
func (*pivotCmd) Usage() string {
	return `ibexctl pivot [-format table|csv|md|xlsx] [-o <file>] [-bom]

  Renders one row per ticker with the price and daily change per session.
  The xlsx format needs -o.
`
}

func (c *pivotCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.format, "format", "table", "output format: table, csv, md or xlsx")
	f.StringVar(&c.output, "o", "", "write to this file instead of stdout")
	f.BoolVar(&c.bom, "bom", false, "prefix CSV output with a UTF-8 byte order mark")
}

func (c *pivotCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return exit(c.run())
}

func (c *pivotCmd) run() error {
	switch c.format {
	case "table", "csv", "md":
	case "xlsx":
		if c.output == "" || c.output == "-" {
			return fmt.Errorf("%w: xlsx output needs -o", errUsage)
		}
	default:
		return fmt.Errorf("%w: unknown format %q", errUsage, c.format)
	}

	ds, err := c.load()
	if err != nil {
		return err
	}
	table := reshape.Pivot(ds.Observations)

	w, closeFn, err := c.writer(c.output)
	if err != nil {
		return err
	}

	switch c.format {
	case "csv":
		err = exporter.WritePivotCSV(w, table, c.bom)
	case "md":
		_, err = io.WriteString(w, exporter.PivotMarkdown(table))
	case "xlsx":
		err = exporter.WritePivotXLSX(w, table)
	default:
		err = renderMarkdown(w, exporter.PivotMarkdown(table))
	}
	return errors.Join(err, closeFn())
}

type historyCmd struct {
	source
	ticker string
	from   string
	to     string
	format string
	output string
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "display the closing prices of one ticker" }
func (*historyCmd) Usage() string {
	return `ibexctl history -ticker <ticker> [-from yyyy-mm-dd] [-to yyyy-mm-dd] [-format table|csv|md] [-o <file>]

  Shows the last close, the day change and the prices of a ticker. Open
  bounds default to the first and last session of the ticker.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "ticker", "", "ticker symbol (required)")
	f.StringVar(&c.from, "from", "", "first session, yyyy-mm-dd")
	f.StringVar(&c.to, "to", "", "last session, yyyy-mm-dd")
	f.StringVar(&c.format, "format", "table", "output format: table, csv or md")
	f.StringVar(&c.output, "o", "", "write to this file instead of stdout")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return exit(c.run())
}

func (c *historyCmd) parseRange() (history.Range, error) {
	var rng history.Range
	var err error
	if c.from != "" {
		if rng.From, err = format.ParseISODate(c.from); err != nil {
			return rng, fmt.Errorf("%w: invalid -from %q", errUsage, c.from)
		}
	}
	if c.to != "" {
		if rng.To, err = format.ParseISODate(c.to); err != nil {
			return rng, fmt.Errorf("%w: invalid -to %q", errUsage, c.to)
		}
	}
	if rng.Inverted() {
		return rng, fmt.Errorf("%w: -from is after -to", errUsage)
	}
	return rng, nil
}

func (c *historyCmd) run() error {
	ticker := strings.TrimSpace(c.ticker)
	if ticker == "" {
		return fmt.Errorf("%w: -ticker is required", errUsage)
	}
	switch c.format {
	case "table", "csv", "md":
	default:
		return fmt.Errorf("%w: unknown format %q", errUsage, c.format)
	}
	rng, err := c.parseRange()
	if err != nil {
		return err
	}

	ds, err := c.load()
	if err != nil {
		return err
	}
	if !ds.HasTicker(ticker) {
		return fmt.Errorf("ticker %q not found in %s", ticker, ds.Path)
	}
	view := history.NewView(ds.Observations, ticker, rng)

	w, closeFn, err := c.writer(c.output)
	if err != nil {
		return err
	}

	switch c.format {
	case "csv":
		err = exporter.WriteHistoryCSV(w, view, false)
	case "md":
		_, err = io.WriteString(w, exporter.HistoryMarkdown(view))
	default:
		err = renderMarkdown(w, exporter.HistoryMarkdown(view))
	}
	return errors.Join(err, closeFn())
}

type reportCmd struct {
	source
	title string
	raw   bool
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "display the dashboard report" }
func (*reportCmd) Usage() string {
	return `ibexctl report [-title <title>] [-raw]

  Renders the dataset summary, the latest session and the pivot. -raw prints
  the markdown source.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.title, "title", config.DefaultTitle, "report title")
	f.BoolVar(&c.raw, "raw", false, "print markdown instead of rendering it")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return exit(c.run())
}

func (c *reportCmd) run() error {
	ds, err := c.load()
	if err != nil {
		return err
	}
	table := reshape.Pivot(ds.Observations)

	views := make([]*history.View, 0, len(table.Tickers))
	for _, ticker := range table.Tickers {
		views = append(views, history.NewView(ds.Observations, ticker, history.Range{}))
	}
	doc := exporter.ReportMarkdown(c.title, ds.Summary(), table, views)

	if c.raw {
		_, err = io.WriteString(c.out, doc)
		return err
	}
	return renderMarkdown(c.out, doc)
}

type versionCmd struct {
	out io.Writer
}

func (*versionCmd) Name() string     { return "version" }
func (*versionCmd) Synopsis() string { return "print the ibexctl version" }
func (*versionCmd) Usage() string    { return "ibexctl version\n" }

func (*versionCmd) SetFlags(*flag.FlagSet) {}

func (c *versionCmd) Execute(context.Context, *flag.FlagSet, ...interface{}) subcommands.ExitStatus {
	_, err := fmt.Fprintf(c.out, "ibexctl %s\n", contracts.GetVersionInfo())
	return exit(err)
}
