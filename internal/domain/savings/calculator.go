// Package savings holds the deterministic savings calculation and the validation of its inputs.
package savings

import (
	"math"
	"strconv"
	"time"

	"reportshare/internal/domain/entity"

	"github.com/pkg/errors"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	// ErrInvalidRate is returned when a configured rate is not positive.
	ErrInvalidRate = errors.New("savings rates must be positive")
	// ErrRateMismatch is returned when the total rate is not the sum of its two shares.
	ErrRateMismatch = errors.New("total rate must equal employer rate plus employee rate")
	// ErrInvalidCount is returned for a non-positive employee count.
	ErrInvalidCount = errors.New("employee count must be greater than zero")
	// ErrCountTooLarge is returned when the savings would not fit in an int64.
	ErrCountTooLarge = errors.New("employee count is too large")
)

// Rates are the per-employee yearly savings, in whole currency units.
type Rates struct {
	Total    int64
	Employer int64
	Employee int64
	Currency string
}

// Validate checks that every rate is positive and that Total == Employer + Employee.
func (r Rates) Validate() error {
	if r.Total <= 0 || r.Employer <= 0 || r.Employee <= 0 {
		return errors.WithStack(ErrInvalidRate)
	}
	if r.Total != r.Employer+r.Employee {
		return errors.Wrapf(ErrRateMismatch, "%d != %d + %d", r.Total, r.Employer, r.Employee)
	}

	return nil
}

// Calculator maps an employee count to a savings breakdown. It keeps no state between calls.
type Calculator struct {
	rates   Rates
	now     func() time.Time
	printer *message.Printer
}

// NewCalculator validates the rates and returns a calculator. now supplies the calendar year
// recorded in every inputs snapshot; nil means time.Now.
func NewCalculator(rates Rates, now func() time.Time) (*Calculator, error) {
	if err := rates.Validate(); err != nil {
		return nil, err
	}
	if now == nil {
		now = time.Now
	}

	return &Calculator{
		rates:   rates,
		now:     now,
		printer: message.NewPrinter(language.English),
	}, nil
}

// Rates returns the rates the calculator was built with.
func (c *Calculator) Rates() Rates {
	return c.rates
}

// Calculate returns the savings breakdown for count employees.
func (c *Calculator) Calculate(count int) (*entity.Calculation, error) {
	if count <= 0 {
		return nil, errors.WithStack(ErrInvalidCount)
	}
	if int64(count) > math.MaxInt64/c.rates.Total {
		return nil, errors.WithStack(ErrCountTooLarge)
	}

	n := int64(count)
	calc := &entity.Calculation{
		TotalSavings:    n * c.rates.Total,
		EmployerSavings: n * c.rates.Employer,
		EmployeeSavings: n * c.rates.Employee,
		Inputs: entity.CalculationInputs{
			EmployeeCount: count,
			Year:          c.now().Year(),
			RateTotal:     c.rates.Total,
			RateEmployer:  c.rates.Employer,
			RateEmployee:  c.rates.Employee,
			Currency:      c.rates.Currency,
		},
	}
	calc.Explanation = c.explain(calc)

	return calc, nil
}

func (c *Calculator) explain(calc *entity.Calculation) string {
	in := calc.Inputs

	return c.printer.Sprintf(
		"With %d employees, the estimated savings for %s total %d %s. "+
			"The employer saves %d %s (%d %s per employee) and the employees save %d %s (%d %s per employee), "+
			"based on %d %s per employee in total.",
		in.EmployeeCount, strconv.Itoa(in.Year),
		calc.TotalSavings, in.Currency,
		calc.EmployerSavings, in.Currency, in.RateEmployer, in.Currency,
		calc.EmployeeSavings, in.Currency, in.RateEmployee, in.Currency,
		in.RateTotal, in.Currency,
	)
}
