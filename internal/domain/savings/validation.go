package savings

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Field labels reported by ValidateReportInput.
const (
	FieldCompanyName   = "company_name"
	FieldIndustry      = "industry"
	FieldEmployeeCount = "employee_count"
)

// maxExactFloat is the largest float64 below which every integer is representable.
const maxExactFloat = 1 << 53

var decimalPattern = regexp.MustCompile(`^[+-]?\d+(\.\d+)?$`)

// RawReportInput is report input as decoded from an untyped payload.
type RawReportInput struct {
	CompanyName   any
	Industry      any
	EmployeeCount any
}

// ReportInput is report input that passed validation.
type ReportInput struct {
	CompanyName   string
	Industry      string
	EmployeeCount int
}

// ValidateReportInput returns the labels of the fields that failed validation, in a stable order.
// An empty result means the input is valid.
func ValidateReportInput(in RawReportInput) []string {
	_, failed := NormalizeReportInput(in)

	return failed
}

// NormalizeReportInput validates in and converts it to a typed ReportInput.
func NormalizeReportInput(in RawReportInput) (ReportInput, []string) {
	failed := make([]string, 0, 3)

	companyName, ok := nonBlankString(in.CompanyName)
	if !ok {
		failed = append(failed, FieldCompanyName)
	}

	industry, ok := nonBlankString(in.Industry)
	if !ok {
		failed = append(failed, FieldIndustry)
	}

	count, ok := positiveInteger(in.EmployeeCount)
	if !ok {
		failed = append(failed, FieldEmployeeCount)
	}

	if len(failed) > 0 {
		return ReportInput{}, failed
	}

	return ReportInput{
		CompanyName:   companyName,
		Industry:      industry,
		EmployeeCount: count,
	}, failed
}

func nonBlankString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)

	return s, s != ""
}

func positiveInteger(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, n > 0
	case int32:
		return int(n), n > 0
	case int64:
		return intFromInt64(n)
	case uint:
		return intFromFloat(float64(n))
	case uint32:
		return int(n), n > 0
	case uint64:
		return intFromFloat(float64(n))
	case float32:
		return intFromFloat(float64(n))
	case float64:
		return intFromFloat(n)
	case json.Number:
		return positiveIntegerString(n.String())
	case string:
		return positiveIntegerString(n)
	default:
		return 0, false
	}
}

func positiveIntegerString(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if !decimalPattern.MatchString(s) {
		return 0, false
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return intFromInt64(i)
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}

	return intFromFloat(f)
}

func intFromInt64(i int64) (int, bool) {
	if i <= 0 || i > math.MaxInt32 {
		return 0, false
	}

	return int(i), true
}

func intFromFloat(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f <= 0 || f >= maxExactFloat {
		return 0, false
	}

	return intFromInt64(int64(f))
}
