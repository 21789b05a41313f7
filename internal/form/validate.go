// internal/form/validate.go
//
// Forms subsystem: field-level and whole-record validation.
//
// Context
//   A Validator binds one FormDef to a go-playground/validator instance.  It
//   answers two questions: "is this single value acceptable for this field"
//   (Field), and "may this record be submitted" (Valid).  Both are pure: the
//   result depends only on the definition and the values passed in, so
//   checking the same value twice always yields the same message.
//
// Workflow
//   •  Rules are validator tag strings checked with Validate.Var.
//   •  The first failing tag selects the message from FieldDef.Messages.
//   •  Select fields additionally require a value from the option list.
//
//------------------------------------------------------------------------------

package form

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Fallback messages when the definition does not provide one.
const (
	msgRequired = "This field is required."
	msgInvalid  = "Invalid input."
	msgUnknown  = "Unknown field."
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// -----------------------------------------------------------------------------
// Record types
// -----------------------------------------------------------------------------

// Record maps field names to values.  Text fields hold strings and checkbox
// fields hold bools.  Every field of the definition is always present.
type Record map[string]any

// Errors maps field names to messages.  An empty string means no error.
type Errors map[string]string

// NewRecord returns the empty initial record for fd.
func NewRecord(fd *FormDef) Record {
	rec := make(Record, len(fd.Fields))
	for _, f := range fd.Fields {
		rec[f.Name] = zeroValue(&f)
	}
	return rec
}

// NewErrors returns an error record with every message cleared.
func NewErrors(fd *FormDef) Errors {
	errs := make(Errors, len(fd.Fields))
	for _, f := range fd.Fields {
		errs[f.Name] = ""
	}
	return errs
}

// Clone returns a shallow copy.  Values are strings or bools, so shallow is
// enough.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// String returns the text value of name, or "" when absent or not a string.
func (r Record) String(name string) string {
	s, _ := r[name].(string)
	return s
}

// Bool returns the checkbox value of name.
func (r Record) Bool(name string) bool {
	b, _ := r[name].(bool)
	return b
}

// Clone returns a copy.
func (e Errors) Clone() Errors {
	out := make(Errors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Any reports whether at least one message is set.
func (e Errors) Any() bool {
	for _, m := range e {
		if m != "" {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------
// Validator
// -----------------------------------------------------------------------------

// Validator checks values against one FormDef.  It is safe for concurrent
// use and holds no per-call state.
type Validator struct {
	def *FormDef
}

// NewValidator binds fd.
func NewValidator(fd *FormDef) *Validator {
	return &Validator{def: fd}
}

// Def returns the bound form definition.
func (v *Validator) Def() *FormDef { return v.def }

// Field validates one candidate value for the named field.  It returns "" when
// the value is acceptable and the user-facing message otherwise.
func (v *Validator) Field(name string, value any) string {
	f, ok := v.def.Field(name)
	if !ok {
		return msgUnknown
	}
	return check(f, Coerce(f, value))
}

// Valid reports whether every field of rec satisfies its rule.
func (v *Validator) Valid(rec Record) bool {
	for i := range v.def.Fields {
		f := &v.def.Fields[i]
		if check(f, Coerce(f, rec[f.Name])) != "" {
			return false
		}
	}
	return true
}

// All returns the message of every field, keyed like the record.
func (v *Validator) All(rec Record) Errors {
	errs := NewErrors(v.def)
	for i := range v.def.Fields {
		f := &v.def.Fields[i]
		errs[f.Name] = check(f, Coerce(f, rec[f.Name]))
	}
	return errs
}

// check runs the validator tags first, then the option list for selects.
func check(f *FieldDef, value any) string {
	if f.Rules != "" {
		if err := validate.Var(value, f.Rules); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) && len(verrs) > 0 {
				return f.message(verrs[0].Tag())
			}
			return f.message("")
		}
	}

	if f.Type == TypeSelect {
		s, _ := value.(string)
		if s != "" && !f.allowed(s) {
			return f.message("options")
		}
	}
	return ""
}

// message resolves the text for a failing tag.
func (f *FieldDef) message(tag string) string {
	if m, ok := f.Messages[tag]; ok && m != "" {
		return m
	}
	if tag == "required" {
		return msgRequired
	}
	return msgInvalid
}

// -----------------------------------------------------------------------------
// Value helpers
// -----------------------------------------------------------------------------

// Coerce converts a raw input value to the type the field stores.  Checkbox
// fields become bools; everything else becomes a string.
func Coerce(f *FieldDef, value any) any {
	if f.Type == TypeCheckbox {
		return checked(value)
	}
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// checked reads the state of a checkbox as browsers and JSON clients send it.
func checked(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "on", "true", "1", "checked", "yes":
			return true
		}
	}
	return false
}

func zeroValue(f *FieldDef) any {
	if f.Type == TypeCheckbox {
		return false
	}
	return ""
}

// checkRules rejects rule strings the validator cannot parse.  The library
// panics on unknown tags, so the check runs once at load time.
func checkRules(f *FieldDef) (err error) {
	if f.Rules == "" {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	_ = validate.Var(zeroValue(f), f.Rules)
	return nil
}
