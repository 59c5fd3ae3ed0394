package fieldmap

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/elliotchance/phpserialize"

	"github.com/gotrs-io/cemigrate/internal/convert"
)

// Price is one billing term of a Clientexec price table.
type Price struct {
	Months int
	Price  float64
	Setup  float64
}

// ParsePricing decodes a PHP serialized Clientexec price table. Keys are
// price<N>, price<N>included and setup<N> where N is the term in months;
// terms marked as not included are dropped. The result is ordered by term.
func ParsePricing(blob string) ([]Price, error) {
	blob = strings.TrimSpace(blob)
	if blob == "" {
		return nil, nil
	}
	table, err := phpserialize.UnmarshalAssociativeArray([]byte(blob))
	if err != nil {
		return nil, fmt.Errorf("invalid price table: %w", err)
	}

	prices := map[int]*Price{}
	included := map[int]bool{}
	get := func(months int) *Price {
		p, ok := prices[months]
		if !ok {
			p = &Price{Months: months}
			prices[months] = p
		}
		return p
	}

	for k, v := range table {
		key := fmt.Sprint(k)
		switch {
		case strings.HasPrefix(key, "price") && strings.HasSuffix(key, "included"):
			months, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(key, "price"), "included"))
			if err != nil {
				continue
			}
			included[months] = number(v) != 0
		case strings.HasPrefix(key, "price"):
			months, err := strconv.Atoi(strings.TrimPrefix(key, "price"))
			if err != nil {
				continue
			}
			get(months).Price = number(v)
		case strings.HasPrefix(key, "setup"):
			months, err := strconv.Atoi(strings.TrimPrefix(key, "setup"))
			if err != nil {
				continue
			}
			get(months).Setup = number(v)
		}
	}

	out := make([]Price, 0, len(prices))
	for months, p := range prices {
		if inc, set := included[months]; set && !inc {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Months < out[j].Months })
	return out, nil
}

func number(v any) float64 {
	switch n := v.(type) {
	case int64:
		return float64(n)
	case float64:
		return n
	case bool:
		if n {
			return 1
		}
	case string:
		f, _ := convert.ParseAmount(n)
		return f
	}
	return 0
}
