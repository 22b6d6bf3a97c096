// Package services provides client-side scheduling helpers.
//
// This file implements the Strategy Pattern for recurring transaction due
// dates. Each frequency (daily, weekly, monthly, yearly) has its own
// strategy that advances a due date by one period.
package services

import (
	"fmt"
	"sort"
	"time"

	"fintrack/internal/core"
)

// DueDateStepper is the strategy interface for advancing a due date.
type DueDateStepper interface {
	// Next returns the due date one period after d. anchorDay is the day of
	// month the schedule started on, used to recover from month-end clamping.
	Next(d core.Date, anchorDay int) core.Date
}

// DailyStepper advances by one day.
type DailyStepper struct{}

func (DailyStepper) Next(d core.Date, _ int) core.Date {
	return core.Date{Time: d.AddDate(0, 0, 1)}
}

// WeeklyStepper advances by seven days.
type WeeklyStepper struct{}

func (WeeklyStepper) Next(d core.Date, _ int) core.Date {
	return core.Date{Time: d.AddDate(0, 0, 7)}
}

// MonthlyStepper advances to the anchor day of the following month, clamped
// to that month's last day.
type MonthlyStepper struct{}

func (MonthlyStepper) Next(d core.Date, anchorDay int) core.Date {
	year, month := d.Year(), d.Month()+1
	if month > 12 {
		month, year = 1, year+1
	}
	return clampedDate(year, month, anchorDay)
}

// YearlyStepper advances to the same month of the following year, clamping
// Feb 29 to Feb 28 outside leap years.
type YearlyStepper struct{}

func (YearlyStepper) Next(d core.Date, anchorDay int) core.Date {
	return clampedDate(d.Year()+1, d.Month(), anchorDay)
}

func clampedDate(year int, month time.Month, day int) core.Date {
	lastDayOfMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > lastDayOfMonth {
		day = lastDayOfMonth
	}
	return core.NewDate(year, int(month), day)
}

// dueDateSteppers maps frequencies to their stepper.
var dueDateSteppers = map[core.Frequency]DueDateStepper{
	core.Daily:   DailyStepper{},
	core.Weekly:  WeeklyStepper{},
	core.Monthly: MonthlyStepper{},
	core.Yearly:  YearlyStepper{},
}

// GetDueDateStepper returns the stepper for a frequency.
func GetDueDateStepper(frequency core.Frequency) (DueDateStepper, error) {
	stepper, ok := dueDateSteppers[frequency]
	if !ok {
		return nil, fmt.Errorf("unknown frequency: %s", frequency)
	}
	return stepper, nil
}

// Occurrence is one predicted charge of a recurring transaction.
type Occurrence struct {
	RecurringID int64
	Name        string
	Type        core.CategoryType
	Amount      core.Money
	Date        core.Date
}

// maxOccurrences bounds the expansion of a single schedule.
const maxOccurrences = 400

// Upcoming expands the active recurring transactions into the occurrences
// falling between now's date and days days later, ordered by date then name.
// Overdue next due dates are reported once, on their own date.
func Upcoming(items []core.RecurringTransaction, now time.Time, days int) []Occurrence {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	until := today.AddDate(0, 0, days)

	var out []Occurrence
	for _, r := range items {
		if !r.DueWithin(now, days) {
			continue
		}
		stepper, err := GetDueDateStepper(r.Frequency)
		if err != nil {
			continue
		}
		anchor := r.NextDueDate.Day()
		d := r.NextDueDate
		for n := 0; n < maxOccurrences && !d.After(until); n++ {
			out = append(out, Occurrence{
				RecurringID: r.ID,
				Name:        r.Name,
				Type:        r.Type,
				Amount:      r.Amount,
				Date:        d,
			})
			if d.Before(today) {
				break
			}
			d = stepper.Next(d, anchor)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.Before(out[j].Date.Time)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Projected sums the upcoming occurrences by category type.
func Projected(occurrences []Occurrence) (income, expense core.Money) {
	for _, o := range occurrences {
		if o.Type == core.CategoryIncome {
			income = income.Add(o.Amount)
		} else {
			expense = expense.Add(o.Amount)
		}
	}
	return income, expense
}
