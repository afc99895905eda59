package main

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Normalizer applies per-kind normalization rules to raw model replies.
// Normalization never fails: unparseable values degrade to a logged warning
// plus a best-effort value.
type Normalizer struct {
	taxonomy *Taxonomy
	logger   *zap.Logger
}

func NewNormalizer(taxonomy *Taxonomy, logger *zap.Logger) *Normalizer {
	return &Normalizer{taxonomy: taxonomy, logger: logger}
}

// Normalize produces a record covering every extraction key present in the
// reply. Keys missing from the spec list fall back to the taxonomy, which
// classifies unknown names as text.
func (n *Normalizer) Normalize(reply Reply, specs []FieldSpec) NormalizedRecord {
	kinds := make(map[string]FieldKind, len(specs))
	for _, spec := range specs {
		kinds[spec.Name] = spec.Kind
	}

	record := make(NormalizedRecord, len(reply))
	for name, raw := range reply {
		if n.taxonomy.IsControl(name) {
			continue
		}
		value := stringifyValue(raw)

		kind, ok := kinds[name]
		if !ok {
			kind = n.taxonomy.Classify(name)
		}

		switch kind {
		case KindCategory:
			record[name] = n.normalizeCategory(value)
		case KindDate:
			record[name] = n.normalizeDate(name, value)
		case KindQuantity:
			record[name] = n.normalizeQuantity(name, value)
		default:
			record[name] = n.normalizeText(name, value)
		}
	}
	return record
}

var pureDigits = regexp.MustCompile(`^\d+$`)

// normalizeCategory collapses applicability flags to "1" or "". Purely
// numeric values (e.g. a year) pass through verbatim.
func (n *Normalizer) normalizeCategory(value string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	switch v {
	case "", "nan":
		return ""
	case "yes", "y", "true", "1":
		return "1"
	case "no", "n", "false", "0":
		return ""
	}
	if pureDigits.MatchString(v) {
		return v
	}
	return "1"
}

// numberWords maps spelled-out English numbers to digit strings, zero through
// nineteen plus the tens.
var numberWords = map[string]string{
	"zero": "0", "one": "1", "two": "2", "three": "3", "four": "4",
	"five": "5", "six": "6", "seven": "7", "eight": "8", "nine": "9",
	"ten": "10", "eleven": "11", "twelve": "12", "thirteen": "13",
	"fourteen": "14", "fifteen": "15", "sixteen": "16", "seventeen": "17",
	"eighteen": "18", "nineteen": "19", "twenty": "20", "thirty": "30",
	"forty": "40", "fifty": "50", "sixty": "60", "seventy": "70",
	"eighty": "80", "ninety": "90",
}

func (n *Normalizer) normalizeQuantity(field, value string) string {
	v := strings.TrimSpace(value)
	if v == "" || strings.EqualFold(v, "nan") {
		return ""
	}
	if pureDigits.MatchString(v) {
		return v
	}
	if digits, ok := numberWords[strings.ToLower(v)]; ok {
		return digits
	}
	n.logger.Warn("quantity value is not numeric, keeping it verbatim",
		zap.String("field", field), zap.String("value", v))
	return v
}

func (n *Normalizer) normalizeText(field, value string) string {
	v := strings.TrimSpace(value)
	if v == "" || strings.EqualFold(v, "nan") {
		return ""
	}
	switch strings.ToLower(v) {
	case "yes", "y", "true":
		n.logger.Warn("text field holds a boolean-like value, possible misclassification",
			zap.String("field", field), zap.String("value", v))
	}
	return v
}

// dateRewrites normalize known irregular shapes into "day month year" token
// order before layout matching: "9th of June, 2025", "26.Jun.2025" and
// "15 July, 2025".
var dateRewrites = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`^(\d+)(?:st|nd|rd|th) of ([A-Za-z]+),? (\d{4})`), "$1 $2 $3"},
	{regexp.MustCompile(`^(\d+)\.([A-Za-z]+)\.(\d{4})`), "$1 $2 $3"},
	{regexp.MustCompile(`^(\d+) ([A-Za-z]+), (\d{4})`), "$1 $2 $3"},
}

// dateLayouts is the ordered list of accepted shapes. First match wins.
// Layouts without a year parse to year 0 and get the current year.
var dateLayouts = []string{
	"2006-01-02",
	"2 January 2006", "2 Jan 2006", "January 2, 2006", "Jan 2, 2006",
	"2.1.2006", "2/1/2006", "1/2/2006", "2006/1/2",
	"2 January, 2006", "2 Jan, 2006", "2.January.2006", "2.Jan.2006",
	"2 January", "2 Jan", "January 2", "Jan 2",
	"2.1.06", "2/1/06", "1/2/06", "06/1/2",
}

var weekdayDate = regexp.MustCompile(`([A-Za-z]+) (\d+) ([A-Za-z]+) (\d{4})`)

// normalizeDate re-emits recognized dates as YYYY-MM-DD and returns the
// original string unchanged when nothing matches.
func (n *Normalizer) normalizeDate(field, value string) string {
	s := strings.TrimSpace(value)
	if s == "" || strings.EqualFold(s, "nan") {
		return ""
	}

	candidate := s
	for _, rw := range dateRewrites {
		if rw.re.MatchString(candidate) {
			candidate = rw.re.ReplaceAllString(candidate, rw.repl)
		}
	}

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, candidate)
		if err != nil {
			continue
		}
		if t.Year() == 0 {
			t = time.Date(time.Now().Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
		return t.Format("2006-01-02")
	}

	// "Tuesday 30 September 2025": drop the weekday and retry.
	if m := weekdayDate.FindStringSubmatch(candidate); m != nil {
		rest := fmt.Sprintf("%s %s %s", m[2], m[3], m[4])
		for _, layout := range []string{"2 January 2006", "2 Jan 2006"} {
			if t, err := time.Parse(layout, rest); err == nil {
				return t.Format("2006-01-02")
			}
		}
	}

	n.logger.Warn("unparseable date value, keeping it verbatim",
		zap.String("field", field), zap.String("value", s))
	return s
}

// stringifyValue renders a decoded JSON scalar as a string. Models sometimes
// emit numbers or booleans where the schema asks for strings.
func stringifyValue(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case bool:
		return strconv.FormatBool(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return fmt.Sprint(value)
	}
}
