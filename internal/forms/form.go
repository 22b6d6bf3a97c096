// Package forms binds entities to editable string fields and back.
package forms

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// Shared field names.
const (
	FieldAmount      = "amount"
	FieldDescription = "description"
	FieldDate        = "date"
	FieldCategoryID  = "category_id"
	FieldSourceType  = "source_type"
	FieldSourceID    = "source_id"
	FieldName        = "name"
)

// Errors maps a field name to its inline message.
type Errors map[string]string

func (e Errors) Add(field, msg string) {
	if _, exists := e[field]; !exists {
		e[field] = msg
	}
}

// Form is the editable state of a create or edit dialog. EditID is zero when
// creating.
type Form struct {
	Values map[string]string
	Errors Errors
	EditID int64
	// Message is a form-level error, typically the server's message.
	Message string
}

func newForm(values map[string]string) Form {
	return Form{Values: values, Errors: Errors{}}
}

func (f Form) Get(field string) string {
	return f.Values[field]
}

// Set updates a field and clears its inline error.
func (f *Form) Set(field, value string) {
	if f.Values == nil {
		f.Values = map[string]string{}
	}
	f.Values[field] = value
	delete(f.Errors, field)
}

func (f Form) IsEdit() bool {
	return f.EditID != 0
}

func (f Form) HasErrors() bool {
	return len(f.Errors) > 0 || f.Message != ""
}

// Clone returns a deep copy.
func (f Form) Clone() Form {
	out := Form{EditID: f.EditID, Message: f.Message, Values: make(map[string]string, len(f.Values)), Errors: make(Errors, len(f.Errors))}
	for k, v := range f.Values {
		out.Values[k] = v
	}
	for k, v := range f.Errors {
		out.Errors[k] = v
	}
	return out
}

// ErrorFields returns the fields with errors, sorted.
func (f Form) ErrorFields() []string {
	out := make([]string, 0, len(f.Errors))
	for k := range f.Errors {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Binder projects one entity type into a Form and parses it back.
type Binder[T any] interface {
	// Fields lists the form fields in display order.
	Fields() []string
	// Blank is the create shape with defaults applied.
	Blank() Form
	FromEntity(item T) Form
	Payload(form Form) (T, Errors)
}

// Clock returns today's date; binders use it for date defaults.
type Clock func() time.Time

func (c Clock) today() string {
	if c == nil {
		c = time.Now
	}
	now := c()
	return core.NewDate(now.Year(), int(now.Month()), now.Day()).String()
}

func (c Clock) month() (int, int) {
	if c == nil {
		c = time.Now
	}
	now := c()
	return int(now.Month()), now.Year()
}

// parser accumulates field errors while reading a form.
type parser struct {
	form Form
	errs Errors
}

func newParser(f Form) *parser {
	return &parser{form: f, errs: Errors{}}
}

func (p *parser) str(field string) string {
	return strings.TrimSpace(p.form.Get(field))
}

func (p *parser) required(field string) string {
	v := p.str(field)
	if v == "" {
		p.errs.Add(field, "required")
	}
	return v
}

func (p *parser) money(field string, required bool) core.Money {
	v := p.str(field)
	if v == "" {
		if required {
			p.errs.Add(field, "required")
		}
		return core.Money{}
	}
	cents, err := core.ParseDecimalToCents(v)
	if err != nil {
		p.errs.Add(field, "must be a positive amount")
		return core.Money{}
	}
	return core.Money{Cents: cents}
}

// balance accepts zero and negative amounts.
func (p *parser) balance(field string) core.Money {
	v := strings.ReplaceAll(p.str(field), ",", ".")
	if v == "" {
		return core.Money{}
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		p.errs.Add(field, "must be a number")
		return core.Money{}
	}
	return core.MoneyFromDecimal(d)
}

func (p *parser) id(field string, required bool) int64 {
	v := p.str(field)
	if v == "" {
		if required {
			p.errs.Add(field, "required")
		}
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		p.errs.Add(field, "invalid selection")
		return 0
	}
	return n
}

func (p *parser) integer(field string, lo, hi int) int {
	v := p.str(field)
	n, err := strconv.Atoi(v)
	if err != nil || n < lo || n > hi {
		p.errs.Add(field, "must be between "+strconv.Itoa(lo)+" and "+strconv.Itoa(hi))
		return 0
	}
	return n
}

func (p *parser) date(field string, required bool) core.Date {
	v := p.str(field)
	if v == "" {
		if required {
			p.errs.Add(field, "required")
		}
		return core.Date{}
	}
	d, err := core.ParseDate(v)
	if err != nil {
		p.errs.Add(field, "must be a date (YYYY-MM-DD)")
	}
	return d
}

func (p *parser) boolean(field string) bool {
	switch strings.ToLower(p.str(field)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// funding reads the source_type and source_id pair.
func (p *parser) funding(required bool) core.FundingRef {
	kind, err := core.ParseFundingKind(p.str(FieldSourceType))
	if err != nil {
		p.errs.Add(FieldSourceType, "must be bank, fund or loan")
		return core.FundingRef{}
	}
	if kind == core.FundingNone {
		if required {
			p.errs.Add(FieldSourceType, "required")
		}
		return core.FundingRef{}
	}
	id := p.id(FieldSourceID, true)
	return core.FundingRef{Kind: kind, ID: id}
}

// validate maps an entity's own validation error to a field when possible.
func (p *parser) validate(err error, fields map[error]string) {
	if err == nil || len(p.errs) > 0 {
		return
	}
	if field, ok := fields[err]; ok {
		p.errs.Add(field, err.Error())
		return
	}
	p.errs.Add("", err.Error())
}

func (p *parser) result() Errors {
	if len(p.errs) == 0 {
		return nil
	}
	return p.errs
}

func idString(id int64) string {
	if id <= 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

func moneyString(m core.Money) string {
	return m.String()
}

func dateString(d core.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

func boolString(b bool) string {
	return strconv.FormatBool(b)
}

func fundingFields(values map[string]string, ref core.FundingRef) {
	values[FieldSourceType] = string(ref.Kind)
	values[FieldSourceID] = idString(ref.ID)
}
