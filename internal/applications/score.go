package applications

import (
	"encoding/json"
	"strconv"
	"strings"
)

// AggregationWarning records which score fields could not be read from
// the matcher's response. The aggregate is still produced from the
// fields that were readable, with absent components contributing zero.
type AggregationWarning struct {
	Missing   []string `json:"missing,omitempty"`
	Malformed []string `json:"malformed,omitempty"`
}

func (w *AggregationWarning) empty() bool {
	return len(w.Missing) == 0 && len(w.Malformed) == 0
}

var scoreComponents = []string{"skill_score", "cert_score", "exp_score"}

// AggregateScore reduces a match-score response to a single number. The
// matcher reports each component as a ratio string such as "8/10"; the
// aggregate is the mean of the three numerators. A non-nil warning
// names any component that was missing or unreadable.
func AggregateScore(raw json.RawMessage) (float64, *AggregationWarning) {
	warning := &AggregationWarning{}

	var envelope struct {
		Details map[string]json.RawMessage `json:"details"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Details == nil {
		warning.Missing = append(warning.Missing, scoreComponents...)
		return 0, warning
	}

	var sum float64
	for _, name := range scoreComponents {
		field, ok := envelope.Details[name]
		if !ok {
			warning.Missing = append(warning.Missing, name)
			continue
		}
		value, err := ratioNumerator(field)
		if err != nil {
			warning.Malformed = append(warning.Malformed, name)
			continue
		}
		sum += value
	}

	score := sum / float64(len(scoreComponents))
	if warning.empty() {
		return score, nil
	}
	return score, warning
}

// ratioNumerator reads the numerator out of a "N/M" ratio string. A
// bare JSON number is accepted as-is.
func ratioNumerator(field json.RawMessage) (float64, error) {
	var asString string
	if err := json.Unmarshal(field, &asString); err == nil {
		numerator, _, found := strings.Cut(asString, "/")
		if !found {
			numerator = asString
		}
		return strconv.ParseFloat(strings.TrimSpace(numerator), 64)
	}

	var asNumber float64
	if err := json.Unmarshal(field, &asNumber); err != nil {
		return 0, err
	}
	return asNumber, nil
}
