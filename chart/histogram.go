// Package chart renders the listings-per-host histogram as an HTML bar chart
// and, through headless Chrome, as a PNG image.
package chart

import (
	"fmt"
	"html/template"
	"io"
)

// Bar is one column of the histogram chart.
type Bar struct {
	Listings int
	Hosts    int
	Height   float64 // percent of the plot height
}

type page struct {
	Title  string
	XLabel string
	YLabel string
	YMax   int
	Bars   []Bar
}

var histogramTmpl = template.Must(template.New("histogram").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { font-family: sans-serif; margin: 24px; background: #fff; }
  h1 { font-size: 18px; text-align: center; }
  .plot { display: flex; align-items: flex-end; height: 360px; border-left: 1px solid #333; border-bottom: 1px solid #333; }
  .col { flex: 1; display: flex; flex-direction: column; justify-content: flex-end; align-items: center; height: 100%; }
  .bar { width: 100%; background: #1f77b4; border-right: 1px solid #fff; }
  .value { font-size: 11px; color: #333; }
  .axis { display: flex; }
  .axis span { flex: 1; text-align: center; font-size: 12px; }
  .label { text-align: center; font-size: 13px; margin-top: 6px; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="label">{{.YLabel}} (max {{.YMax}})</div>
<div class="plot" id="plot">
{{- range .Bars}}
  <div class="col"><span class="value">{{.Hosts}}</span><div class="bar" style="height: {{printf "%.2f" .Height}}%"></div></div>
{{- end}}
</div>
<div class="axis">
{{- range .Bars}}<span>{{.Listings}}</span>{{end}}
</div>
<div class="label">{{.XLabel}}</div>
</body>
</html>
`))

// Bars converts a histogram (index = listings per host, value = hosts) into
// chart columns 0..maxListings, scaled to the tallest column shown.
func Bars(histogram []int, maxListings int) []Bar {
	bars := make([]Bar, 0, maxListings+1)
	peak := 0
	for i := 0; i <= maxListings; i++ {
		hosts := 0
		if i < len(histogram) {
			hosts = histogram[i]
		}
		if hosts > peak {
			peak = hosts
		}
		bars = append(bars, Bar{Listings: i, Hosts: hosts})
	}
	if peak > 0 {
		for i := range bars {
			bars[i].Height = float64(bars[i].Hosts) * 100 / float64(peak)
		}
	}
	return bars
}

// WriteHistogramHTML writes a self-contained page charting the number of
// hosts per listing count, with the x axis clipped to maxListings.
func WriteHistogramHTML(w io.Writer, histogram []int, maxListings int) error {
	if maxListings < 1 {
		return fmt.Errorf("chart: maxListings must be at least 1, got %d", maxListings)
	}

	bars := Bars(histogram, maxListings)
	yMax := 0
	for _, b := range bars {
		if b.Hosts > yMax {
			yMax = b.Hosts
		}
	}

	p := page{
		Title:  "# of listings per host",
		XLabel: "# of listings",
		YLabel: "# of hosts",
		YMax:   yMax,
		Bars:   bars,
	}
	if err := histogramTmpl.Execute(w, p); err != nil {
		return fmt.Errorf("chart: render html: %w", err)
	}
	return nil
}
