package render

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Sumatoshi-tech/gitkarma/pkg/stats"
)

const (
	chartWidth  = "100%"
	chartHeight = "420px"

	labelFontSize = 10
	styleTagLen   = 8 // len("</style>")
)

// histogramChart renders a histogram as an embeddable bar chart fragment:
// group length on the x axis, group count on the y axis.
func histogramChart(seriesName string, hist stats.Histogram, color string) (template.HTML, error) {
	lengths := make([]int, 0, len(hist))
	for length := range hist {
		lengths = append(lengths, length)
	}

	sort.Ints(lengths)

	labels := make([]string, len(lengths))
	data := make([]opts.BarData, len(lengths))

	for i, length := range lengths {
		labels[i] = strconv.Itoa(length)
		data[i] = opts.BarData{Value: hist[length]}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:      "group length",
			AxisLabel: &opts.AxisLabel{Interval: "0", FontSize: labelFontSize},
		}),
		charts.WithYAxisOpts(opts.YAxis{Name: "groups"}),
	)
	bar.SetXAxis(labels)
	bar.AddSeries(seriesName, data, charts.WithItemStyleOpts(opts.ItemStyle{Color: color}))

	var buf bytes.Buffer

	err := bar.Render(&buf)
	if err != nil {
		return "", fmt.Errorf("render chart %s: %w", seriesName, err)
	}

	//nolint:gosec // echarts output is generated, not user input
	return template.HTML(extractChartContent(buf.String())), nil
}

// extractChartContent strips the full-page scaffolding echarts emits down
// to the chart div and its script, so the fragment embeds in our own page.
func extractChartContent(html string) string {
	trimmed := strings.TrimSpace(html)
	if !strings.HasPrefix(trimmed, "<!DOCTYPE") && !strings.HasPrefix(trimmed, "<html") {
		return html
	}

	start := strings.Index(html, `<div class="container">`)
	if start == -1 {
		return html
	}

	end := strings.Index(html, `</body>`)
	if end == -1 {
		return html
	}

	content := html[start:end]
	content = strings.ReplaceAll(content, `class="container"`, `class="chart-box"`)
	content = removeStyleTags(content)

	return content
}

func removeStyleTags(content string) string {
	for {
		i := strings.Index(content, `<style>`)
		if i == -1 {
			break
		}

		j := strings.Index(content[i:], `</style>`)
		if j == -1 {
			break
		}

		content = content[:i] + content[i+j+styleTagLen:]
	}

	return content
}
