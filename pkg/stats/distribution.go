package stats

// DefaultThresholds is the default set of noteworthy contiguous span sizes,
// in descending significance.
var DefaultThresholds = []int{140, 70, 50, 30, 15, 7, 3}

// Row reports, for one threshold, how many groups of at least that length
// the histogram holds and how many lines they cover, both as raw counts and
// as percentages of all groups and of totalLines.
type Row struct {
	Threshold  int     `json:"threshold" yaml:"threshold"`
	GroupCount int     `json:"group_count" yaml:"group_count"`
	GroupPct   float64 `json:"group_pct" yaml:"group_pct"`
	LineCount  int     `json:"line_count" yaml:"line_count"`
	LinePct    float64 `json:"line_pct" yaml:"line_pct"`
}

const percentScale = 100.0

// Distribution evaluates each threshold independently over the histogram:
// groups with length >= threshold are summed by count and by covered lines.
func Distribution(hist Histogram, totalLines int, thresholds []int) []Row {
	totalGroups := hist.Groups()
	rows := make([]Row, 0, len(thresholds))

	for _, threshold := range thresholds {
		groupCount := 0
		lineCount := 0

		for length, count := range hist {
			if length >= threshold {
				groupCount += count
				lineCount += length * count
			}
		}

		rows = append(rows, Row{
			Threshold:  threshold,
			GroupCount: groupCount,
			GroupPct:   percent(groupCount, totalGroups),
			LineCount:  lineCount,
			LinePct:    percent(lineCount, totalLines),
		})
	}

	return rows
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}

	return float64(part) / float64(whole) * percentScale
}
