package exporter

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"

	"github.com/trazeinos/ibex35-dashboard/internal/format"
	"github.com/trazeinos/ibex35-dashboard/internal/history"
	"github.com/trazeinos/ibex35-dashboard/internal/reshape"
	"github.com/trazeinos/ibex35-dashboard/pkg/contracts/domain"
)

func pivotTableSet(t *reshape.Table) md.TableSet {
	headers, records := PivotRecords(t)
	alignment := make([]md.TableAlignment, len(headers))
	for i := range alignment {
		alignment[i] = md.AlignRight
	}
	alignment[0] = md.AlignLeft

	return md.TableSet{
		Alignment: alignment,
		Header:    headers,
		Rows:      records,
	}
}

// PivotMarkdown renders the pivot as a markdown table.
func PivotMarkdown(t *reshape.Table) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Closing prices")
	if t.Empty() {
		doc.PlainText("No data.")
		return doc.String()
	}
	doc.Table(pivotTableSet(t))
	return doc.String()
}

func historyTableSet(v *history.View) md.TableSet {
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Fecha", "Precio"},
		Rows:      [][]string{},
	}
	for _, r := range v.Rows {
		table.Rows = append(table.Rows, []string{r.Fecha, formatFloat(r.Precio)})
	}
	return table
}

// HistoryMarkdown renders a ticker view: metric, period and price table.
func HistoryMarkdown(v *history.View) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("History for %s", v.Ticker))
	writeHistoryBody(doc, v)
	return doc.String()
}

func writeHistoryBody(doc *md.Markdown, v *history.View) {
	if v.Empty {
		doc.PlainText("No data for the selected range.")
		return
	}

	doc.BulletList(
		fmt.Sprintf("Range: %s to %s", format.LongDate(v.Range.From), format.LongDate(v.Range.To)),
		fmt.Sprintf("Last close: %s", md.Bold(v.Metric.PriceText())),
		fmt.Sprintf("Day change: %s", md.Bold(HistoryChange(v))),
		fmt.Sprintf("Period change: %s", format.Percent(v.Stats.PeriodChange)),
	)
	doc.Table(historyTableSet(v))
}

// ReportMarkdown renders the full dashboard report: dataset summary, the
// latest movers and the pivot.
func ReportMarkdown(title string, meta domain.DatasetSummary, t *reshape.Table, views []*history.View) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(title)
	doc.BulletList(
		fmt.Sprintf("Source: %s", meta.Path),
		fmt.Sprintf("Rows: %d", meta.Rows),
		fmt.Sprintf("Tickers: %d", meta.Tickers),
		fmt.Sprintf("Period: %s to %s", meta.FirstDate, meta.LastDate),
	)

	if t.Empty() {
		doc.PlainText("No data.")
		return doc.String()
	}

	doc.H2("Latest session")
	movers := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Ticker", "Fecha", "Precio", "Cambio"},
		Rows:      [][]string{},
	}
	for _, v := range views {
		if v.Empty {
			continue
		}
		movers.Rows = append(movers.Rows, []string{
			v.Ticker,
			format.LongDate(v.Series[len(v.Series)-1].Date),
			v.Metric.PriceText(),
			HistoryChange(v),
		})
	}
	doc.Table(movers)

	doc.H2("Prices")
	doc.Table(pivotTableSet(t))

	return doc.String()
}
