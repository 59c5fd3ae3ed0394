package convert

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CurrencyFormat builds the destination display format from Clientexec's
// separator tokens. The literal token "space" stands for a blank. The
// fractional segment is only appended when precision is above zero.
//
//	CurrencyFormat(",", ".", 2)    == "#,###.##"
//	CurrencyFormat("space", ",", 2) == "# ###,##"
//	CurrencyFormat(",", ".", 0)    == "#,###"
func CurrencyFormat(thousands, decimal string, precision int) string {
	thousands = separator(thousands)
	decimal = separator(decimal)
	if decimal == "" {
		decimal = "."
	}

	format := "#" + thousands + "###"
	if precision > 0 {
		format += decimal + "##"
	}
	return format
}

func separator(token string) string {
	switch strings.ToLower(token) {
	case "space":
		return " "
	case "none":
		return ""
	}
	return token
}

// Amount formats a money value with four decimals, the precision the
// destination stores.
func Amount(v float64) string {
	return strconv.FormatFloat(Round(v, 4), 'f', 4, 64)
}

// Round rounds v half away from zero to places decimals.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// ParseAmount reads a stored money value. Thousands separators and
// surrounding blanks are stripped; an empty value is zero.
func ParseAmount(value string) (float64, error) {
	value = strings.TrimSpace(strings.ReplaceAll(value, ",", ""))
	if value == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	return f, nil
}
