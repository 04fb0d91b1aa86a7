// Package chart lays out a price-versus-date line as SVG coordinates for the
// ticker page template.
package chart

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/trazeinos/ibex35-dashboard/internal/format"
)

const (
	marginLeft   = 56
	marginRight  = 16
	marginTop    = 16
	marginBottom = 32

	priceTicks   = 5
	maxDateTicks = 6
)

// Point is one sample of the line.
type Point struct {
	Date  time.Time
	Value float64
}

// XY is a position in chart pixels.
type XY struct {
	X float64
	Y float64
}

// Tick is an axis label at a pixel offset along its axis.
type Tick struct {
	Pos   float64
	Label string
}

// Chart holds everything the SVG template needs.
type Chart struct {
	Width  int
	Height int

	Left, Top, Right, Bottom float64

	Points []XY
	XTicks []Tick
	YTicks []Tick
	NoData bool
}

// Polyline returns the points in SVG "x,y x,y" form.
func (c Chart) Polyline() string {
	parts := make([]string, len(c.Points))
	for i, p := range c.Points {
		parts[i] = fmt.Sprintf("%.1f,%.1f", p.X, p.Y)
	}
	return strings.Join(parts, " ")
}

// Single reports whether the series has exactly one point, which the template
// draws as a dot.
func (c Chart) Single() bool {
	return len(c.Points) == 1
}

// LineChart scales points into a width by height canvas. Dates are placed
// proportionally to elapsed time.
func LineChart(points []Point, width, height int) Chart {
	c := Chart{
		Width:  width,
		Height: height,
		Left:   marginLeft,
		Top:    marginTop,
		Right:  float64(width - marginRight),
		Bottom: float64(height - marginBottom),
	}
	if len(points) == 0 {
		c.NoData = true
		return c
	}

	lo, hi := points[0].Value, points[0].Value
	for _, p := range points[1:] {
		lo = math.Min(lo, p.Value)
		hi = math.Max(hi, p.Value)
	}
	if hi == lo {
		pad := math.Max(math.Abs(hi)*0.05, 1)
		lo, hi = lo-pad, hi+pad
	}

	first, last := points[0].Date, points[len(points)-1].Date
	span := last.Sub(first).Seconds()

	xOf := func(d time.Time) float64 {
		if span == 0 {
			return (c.Left + c.Right) / 2
		}
		return c.Left + d.Sub(first).Seconds()/span*(c.Right-c.Left)
	}
	yOf := func(v float64) float64 {
		return c.Bottom - (v-lo)/(hi-lo)*(c.Bottom-c.Top)
	}

	c.Points = make([]XY, len(points))
	for i, p := range points {
		c.Points[i] = XY{X: xOf(p.Date), Y: yOf(p.Value)}
	}

	for i := 0; i < priceTicks; i++ {
		v := lo + (hi-lo)*float64(i)/float64(priceTicks-1)
		c.YTicks = append(c.YTicks, Tick{Pos: yOf(v), Label: format.Price(v)})
	}

	for _, i := range dateTickIndexes(len(points)) {
		c.XTicks = append(c.XTicks, Tick{Pos: xOf(points[i].Date), Label: format.ShortDate(points[i].Date)})
	}

	return c
}

// dateTickIndexes spreads up to maxDateTicks labels across n points, always
// including both ends.
func dateTickIndexes(n int) []int {
	if n <= maxDateTicks {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	idx := make([]int, 0, maxDateTicks)
	for i := 0; i < maxDateTicks; i++ {
		idx = append(idx, int(math.Round(float64(i)*float64(n-1)/float64(maxDateTicks-1))))
	}
	return idx
}
