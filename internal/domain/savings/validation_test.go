package savings

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validRaw() RawReportInput {
	return RawReportInput{CompanyName: "Acme", Industry: "Manufacturing", EmployeeCount: float64(20)}
}

func TestValidateReportInput_Valid(t *testing.T) {
	assert.Empty(t, ValidateReportInput(validRaw()))
}

func TestValidateReportInput_Names(t *testing.T) {
	tests := []struct {
		name  string
		value any
		valid bool
	}{
		{name: "plain", value: "Acme", valid: true},
		{name: "padded", value: "  Acme  ", valid: true},
		{name: "empty", value: "", valid: false},
		{name: "blank", value: " \t\n", valid: false},
		{name: "nil", value: nil, valid: false},
		{name: "number", value: 42.0, valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validRaw()
			in.CompanyName = tt.value
			in.Industry = tt.value

			failed := ValidateReportInput(in)
			if tt.valid {
				assert.Empty(t, failed)
			} else {
				assert.Equal(t, []string{FieldCompanyName, FieldIndustry}, failed)
			}
		})
	}
}

func TestValidateReportInput_EmployeeCount(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  int
		valid bool
	}{
		{name: "json number float", value: float64(20), want: 20, valid: true},
		{name: "json.Number", value: json.Number("15"), want: 15, valid: true},
		{name: "int", value: 3, want: 3, valid: true},
		{name: "int64", value: int64(7), want: 7, valid: true},
		{name: "numeric string", value: "250", want: 250, valid: true},
		{name: "integral decimal string", value: "12.0", want: 12, valid: true},
		{name: "fractional", value: 2.5, valid: false},
		{name: "fractional string", value: "2.5", valid: false},
		{name: "zero", value: 0.0, valid: false},
		{name: "negative", value: -4, valid: false},
		{name: "negative string", value: "-4", valid: false},
		{name: "nan", value: math.NaN(), valid: false},
		{name: "infinity", value: math.Inf(1), valid: false},
		{name: "infinity string", value: "Inf", valid: false},
		{name: "hex string", value: "0x10", valid: false},
		{name: "words", value: "twenty", valid: false},
		{name: "bool", value: true, valid: false},
		{name: "nil", value: nil, valid: false},
		{name: "too large", value: float64(1 << 40), valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validRaw()
			in.EmployeeCount = tt.value

			normalized, failed := NormalizeReportInput(in)
			if !tt.valid {
				assert.Equal(t, []string{FieldEmployeeCount}, failed)

				return
			}
			assert.Empty(t, failed)
			assert.Equal(t, tt.want, normalized.EmployeeCount)
		})
	}
}

func TestNormalizeReportInput_TrimsNames(t *testing.T) {
	normalized, failed := NormalizeReportInput(RawReportInput{
		CompanyName:   "  Acme Corp ",
		Industry:      "\tRetail",
		EmployeeCount: "20",
	})

	assert.Empty(t, failed)
	assert.Equal(t, ReportInput{CompanyName: "Acme Corp", Industry: "Retail", EmployeeCount: 20}, normalized)
}

func TestValidateReportInput_AllFieldsInvalid(t *testing.T) {
	failed := ValidateReportInput(RawReportInput{})

	assert.Equal(t, []string{FieldCompanyName, FieldIndustry, FieldEmployeeCount}, failed)
}
