package hfp

import (
	"fmt"
	"strconv"
	"strings"
)

// IndicatorName is one of the fixed HFP indicator vocabulary entries an
// Audio Gateway may advertise via +CIND.
type IndicatorName string

const (
	IndCall      IndicatorName = "call"
	IndCallSetup IndicatorName = "callsetup"
	IndService   IndicatorName = "service"
	IndSignal    IndicatorName = "signal"
	IndRoam      IndicatorName = "roam"
	IndBattChg   IndicatorName = "battchg"
	IndCallHeld  IndicatorName = "callheld"
)

// agIndicatorVocabulary is the fixed indicator table this AG advertises
// in response to +CIND=?, in the order +CIND? values are later reported.
var agIndicatorVocabulary = []struct {
	name  IndicatorName
	ranks string
}{
	{IndCall, "(0,1)"},
	{IndCallSetup, "(0-3)"},
	{IndService, "(0-1)"},
	{IndSignal, "(0-5)"},
	{IndRoam, "(0-1)"},
	{IndBattChg, "(0-5)"},
	{IndCallHeld, "(0-2)"},
}

// buildCindTestValue formats the AG's indicator vocabulary for a +CIND=?
// response.
func buildCindTestValue() string {
	parts := make([]string, len(agIndicatorVocabulary))
	for i, ind := range agIndicatorVocabulary {
		parts[i] = fmt.Sprintf("(%q,%s)", string(ind.name), ind.ranks)
	}
	return strings.Join(parts, ",")
}

// buildCindGetValue formats an all-zero +CIND? response; this AG never
// tracks call state of its own, only what the Non-goals allow.
func buildCindGetValue() string {
	zeros := make([]string, len(agIndicatorVocabulary))
	for i := range zeros {
		zeros[i] = "0"
	}
	return strings.Join(zeros, ",")
}

// IndicatorMap maps a 1-based +CIND position to the indicator name that
// occupies it, as advertised by the peer AG's +CIND=? response. Once
// populated it is read-only for the remainder of the session.
type IndicatorMap []IndicatorName

// At returns the indicator name at 1-based position pos, or "" if pos is
// out of range.
func (m IndicatorMap) At(pos int) IndicatorName {
	if pos < 1 || pos > len(m) {
		return ""
	}
	return m[pos-1]
}

// ParseIndicatorMap extracts the ordered indicator names from a +CIND=?
// response value, e.g. `("call",(0,1)),("callsetup",(0-3))`. Only the
// quoted name of each tuple matters; the supported-value ranges are
// informational and dropped.
func ParseIndicatorMap(value string) (IndicatorMap, error) {
	var names IndicatorMap
	rest := value
	for {
		start := strings.IndexByte(rest, '"')
		if start < 0 {
			break
		}
		rest = rest[start+1:]
		end := strings.IndexByte(rest, '"')
		if end < 0 {
			return nil, fmt.Errorf("hfp: unterminated indicator name in %q", value)
		}
		names = append(names, IndicatorName(rest[:end]))
		rest = rest[end+1:]
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("hfp: no indicators found in %q", value)
	}
	return names, nil
}

// ParseIndicatorValues splits a comma-separated +CIND? response value
// into integers, positionally aligned with an IndicatorMap.
func ParseIndicatorValues(value string) ([]int, error) {
	fields := strings.Split(value, ",")
	values := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("hfp: bad indicator value %q: %w", f, err)
		}
		values[i] = v
	}
	return values, nil
}
