package stats

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Supported output format names.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ErrUnknownFormat indicates an unsupported output format name.
var ErrUnknownFormat = errors.New("unknown output format (expected text, json, or yaml)")

// NormalizeFormat lower-cases and trims a format name, mapping the empty
// string to the text default.
func NormalizeFormat(format string) string {
	normalized := strings.ToLower(strings.TrimSpace(format))
	if normalized == "" {
		return FormatText
	}

	return normalized
}

// ValidateFormat returns the normalized format name or ErrUnknownFormat.
func ValidateFormat(format string) (string, error) {
	normalized := NormalizeFormat(format)

	switch normalized {
	case FormatText, FormatJSON, FormatYAML:
		return normalized, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// report is the serializable shape of a finalized run for json/yaml output.
type report struct {
	Stats        *Stats `json:"stats" yaml:"stats"`
	BlockLengths []Row  `json:"block_length_distribution" yaml:"block_length_distribution"`
	KarmaRuns    []Row  `json:"karma_run_distribution" yaml:"karma_run_distribution"`
}

const jsonIndent = "  "

// RenderJSON writes the finalized stats and both distributions as JSON.
func RenderJSON(w io.Writer, s *Stats, thresholds []int) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", jsonIndent)

	err := encoder.Encode(buildReport(s, thresholds))
	if err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}

	return nil
}

// RenderYAML writes the finalized stats and both distributions as YAML.
func RenderYAML(w io.Writer, s *Stats, thresholds []int) error {
	encoder := yaml.NewEncoder(w)
	defer encoder.Close()

	err := encoder.Encode(buildReport(s, thresholds))
	if err != nil {
		return fmt.Errorf("encode yaml report: %w", err)
	}

	return nil
}

func buildReport(s *Stats, thresholds []int) report {
	return report{
		Stats:        s,
		BlockLengths: Distribution(s.BlockLengths, s.TotalLines, thresholds),
		KarmaRuns:    Distribution(s.KarmaRuns, s.TotalLines, thresholds),
	}
}
