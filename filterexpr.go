package main

import (
	"cmp"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// CompareOp is the comparison operator of a size or time expression.
type CompareOp string

const (
	OpLess         CompareOp = "<"
	OpLessEqual    CompareOp = "<="
	OpGreater      CompareOp = ">"
	OpGreaterEqual CompareOp = ">="
	OpEqual        CompareOp = "=="
)

// holds reports whether a three-way comparison result c satisfies the operator.
func (op CompareOp) holds(c int) bool {
	switch op {
	case OpLess:
		return c < 0
	case OpLessEqual:
		return c <= 0
	case OpGreater:
		return c > 0
	case OpGreaterEqual:
		return c >= 0
	case OpEqual:
		return c == 0
	}
	return false
}

var (
	exprPattern = regexp.MustCompile(`^\s*(<=|>=|==|<|>)\s*(\S.*?)\s*$`)
	sizePattern = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)\s*([KMGTP]?)B?$`)
)

const sizeUnits = "KMGTP"

// splitExpr separates "<op><value>" into its parts.
func splitExpr(expr string) (CompareOp, string, error) {
	m := exprPattern.FindStringSubmatch(expr)
	if m == nil {
		return "", "", fmt.Errorf("expected <, <=, >, >= or == followed by a value, got %q", expr)
	}
	return CompareOp(m[1]), m[2], nil
}

// SizeFilter compares a file size against a byte bound, e.g. ">1K".
type SizeFilter struct {
	Op    CompareOp
	Bytes int64
	Raw   string
}

// ParseSizeFilter parses expressions such as ">1K", "<=500B" or "==2MB".
// Units are powers of 1024.
func ParseSizeFilter(expr string) (*SizeFilter, error) {
	op, value, err := splitExpr(expr)
	if err != nil {
		return nil, err
	}
	m := sizePattern.FindStringSubmatch(value)
	if m == nil {
		return nil, fmt.Errorf("invalid size %q in %q", value, expr)
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid size %q: %w", value, err)
	}
	multiplier := 1.0
	if unit := strings.ToUpper(m[2]); unit != "" {
		for i := 0; i <= strings.Index(sizeUnits, unit); i++ {
			multiplier *= 1024
		}
	}
	bytes := n * multiplier
	if math.IsInf(bytes, 0) || bytes >= math.MaxInt64 {
		return nil, fmt.Errorf("size %q is out of range", value)
	}
	return &SizeFilter{Op: op, Bytes: int64(bytes), Raw: expr}, nil
}

// Match reports whether size satisfies the expression.
func (f *SizeFilter) Match(size int64) bool {
	return f.Op.holds(cmp.Compare(size, f.Bytes))
}

// timeLayouts are tried in order when parsing the value of a time expression.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// TimeFilter compares a modification time against an instant, e.g. ">2023-01-01".
type TimeFilter struct {
	Op  CompareOp
	At  time.Time
	Raw string
}

// ParseTimeFilter parses expressions such as ">2023-01-01". Values without a
// zone are interpreted in loc.
func ParseTimeFilter(expr string, loc *time.Location) (*TimeFilter, error) {
	op, value, err := splitExpr(expr)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range timeLayouts {
		at, err := time.ParseInLocation(layout, value, loc)
		if err == nil {
			return &TimeFilter{Op: op, At: at, Raw: expr}, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q in %q, expected YYYY-MM-DD", value, expr)
}

// Match reports whether t satisfies the expression. "==" compares calendar
// days in the location of the bound.
func (f *TimeFilter) Match(t time.Time) bool {
	if f.Op == OpEqual {
		y1, m1, d1 := t.In(f.At.Location()).Date()
		y2, m2, d2 := f.At.Date()
		return y1 == y2 && m1 == m2 && d1 == d2
	}
	return f.Op.holds(t.Compare(f.At))
}
