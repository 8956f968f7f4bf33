package core

// convert.go converts decoded cell values to PostgreSQL parameter types.
//
// Imported text is copied verbatim. Only lookups (filters, path parameters)
// are trimmed, since those come from URLs rather than spreadsheet cells.

import (
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// ToPgText converts a lookup value to pgtype.Text.
// Returns invalid if the string is empty or only whitespace.
func ToPgText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// cellText returns the record's value for col as-is.
// An absent column is NULL; a present one is kept even if blank.
func cellText(rec Record, col string) pgtype.Text {
	v, ok := rec[col]
	if !ok {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: v, Valid: true}
}

// maxScoreExponent bounds the exponent NormalizeScore will expand exactly.
// Values outside it go to the database cast as written.
const maxScoreExponent = 32

// NormalizeScore formats a numeric score with exactly two decimals.
// Thousands separators and surrounding whitespace are ignored. Rounding is
// done in decimal, half away from zero, the same way a NUMERIC(5,2) cast
// rounds. Values that are not numbers are returned unchanged so the database
// cast rejects them.
//
//	NormalizeScore("85")       // "85.00"
//	NormalizeScore(" 72.456 ") // "72.46"
//	NormalizeScore("2.675")    // "2.68"
//	NormalizeScore("abc")      // "abc"
func NormalizeScore(s string) string {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if !numericRegex.MatchString(clean) {
		return s
	}
	if exp := scoreExponent(clean); exp > maxScoreExponent || exp < -maxScoreExponent {
		return clean
	}
	r, ok := new(big.Rat).SetString(clean)
	if !ok {
		return s
	}
	return formatCents(r)
}

// scoreExponent returns the decimal exponent of a numeric string, or
// math.MaxInt when it does not fit in an int.
func scoreExponent(s string) int {
	i := strings.IndexAny(s, "eE")
	if i < 0 {
		return 0
	}
	n, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return math.MaxInt
	}
	return n
}

// formatCents rounds r to two decimals, half away from zero.
func formatCents(r *big.Rat) string {
	num := new(big.Int).Mul(r.Num(), big.NewInt(100))
	q, m := new(big.Int).QuoRem(num, r.Denom(), new(big.Int))

	// QuoRem truncates toward zero; m carries the sign of the value.
	sign := m.Sign()
	if sign != 0 && m.Abs(m).Lsh(m, 1).Cmp(r.Denom()) >= 0 {
		q.Add(q, big.NewInt(int64(sign)))
	}

	neg := q.Sign() < 0
	digits := q.Abs(q).String()
	for len(digits) < 3 {
		digits = "0" + digits
	}
	out := digits[:len(digits)-2] + "." + digits[len(digits)-2:]
	if neg {
		out = "-" + out
	}
	return out
}

// scoreText converts the Score cell, keeping NULL for an absent cell.
func scoreText(rec Record, col string) pgtype.Text {
	t := cellText(rec, col)
	if t.Valid {
		t.String = NormalizeScore(t.String)
	}
	return t
}
