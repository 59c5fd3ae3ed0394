package fieldmap

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/gotrs-io/cemigrate/internal/convert"
)

// Record is the flat field set of one source record.
type Record map[string]string

// Transform converts a raw source value. rec is the whole source record for
// transforms that need context. The result is a string, a []string or a map
// that the translator serializes when the mapping asks for it.
type Transform func(raw string, rec Record) (any, error)

var transforms = map[string]Transform{
	"nameservers": nameservers,
	"bool":        boolean,
	"lower":       func(raw string, _ Record) (any, error) { return strings.ToLower(strings.TrimSpace(raw)), nil },
	"trim":        func(raw string, _ Record) (any, error) { return strings.TrimSpace(raw), nil },
	"term_months": termMonths,
	"html":        func(raw string, _ Record) (any, error) { return sanitizer.HTML(raw), nil },
	"join_lines":  joinLines,
}

var sanitizer = convert.NewSanitizer()

// Transforms returns the names of the registered transforms in sorted order
func Transforms() []string {
	names := make([]string, 0, len(transforms))
	for name := range transforms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func splitList(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || unicode.IsSpace(r)
	})
}

// nameservers builds a list from a separated value, falling back to numbered
// ns1..ns5 fields of the record.
func nameservers(raw string, rec Record) (any, error) {
	list := []string{}
	for _, ns := range splitList(raw) {
		list = append(list, strings.ToLower(ns))
	}
	if len(list) == 0 {
		for i := 1; i <= 5; i++ {
			if ns := strings.TrimSpace(rec["ns"+strconv.Itoa(i)]); ns != "" {
				list = append(list, strings.ToLower(ns))
			}
		}
	}
	return list, nil
}

func boolean(raw string, _ Record) (any, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "yes", "on", "true", "y":
		return "true", nil
	default:
		return "false", nil
	}
}

// Term converts a month count to a Blesta term and period.
func Term(months int) (int, string) {
	switch {
	case months <= 0:
		return 0, "onetime"
	case months%12 == 0:
		return months / 12, "year"
	default:
		return months, "month"
	}
}

func termMonths(raw string, _ Record) (any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	months, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("term %q is not a number of months", raw)
	}
	term, period := Term(months)
	if period == "onetime" {
		return period, nil
	}
	return fmt.Sprintf("%d %s", term, period), nil
}

// joinLines removes line breaks, e.g. from a wrapped WHM access hash.
func joinLines(raw string, _ Record) (any, error) {
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, ""), nil
}
