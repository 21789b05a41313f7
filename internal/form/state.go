// internal/form/state.go
//
// Forms subsystem: per-session form state holder.
//
// Context
//   A Form owns everything one visitor's sign-up page shows: the current
//   record, the per-field messages, the submit-enabled flag, the server-error
//   banner, and the payload echoed by the collector after the last successful
//   submission.  Every input event goes through Change, which is the only
//   update path:
//
//      merge value → field check → store message → whole-record check
//
//   The whole-record check is an explicit call at the end of Change, so the
//   flag always reflects the record just written.
//
// Concurrency
//   HTTP handlers for one session may overlap, so a mutex serialises events.
//   Submit releases the lock while the collector request is in flight; other
//   events stay responsive and a late response after Dispose is dropped.
//
//------------------------------------------------------------------------------

package form

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/yanizio/volunteer/internal/metrics"
)

// ServerErrorMessage is the fixed banner shown when a submission fails.
const ServerErrorMessage = "oops! something happened!"

var (
	// ErrNotReady is returned by Submit while the record is not valid.
	ErrNotReady = errors.New("form: submit is disabled")
	// ErrDisposed is returned once the form has been disposed.
	ErrDisposed = errors.New("form: disposed")
	// ErrUnknownField is returned by Change for names outside the definition.
	ErrUnknownField = errors.New("form: unknown field")
)

// Submitter sends a record to the remote collector and returns whatever the
// collector echoed back.
type Submitter interface {
	Submit(ctx context.Context, rec Record) (json.RawMessage, error)
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, rec Record) (json.RawMessage, error)

// Submit implements Submitter.
func (fn SubmitterFunc) Submit(ctx context.Context, rec Record) (json.RawMessage, error) {
	return fn(ctx, rec)
}

// View is a point-in-time copy of the form state, shaped for rendering.
// Messages of fields marked hide_error are blanked.
type View struct {
	Values        Record          `json:"values"`
	Errors        Errors          `json:"errors"`
	SubmitEnabled bool            `json:"submitEnabled"`
	ServerError   string          `json:"serverError,omitempty"`
	Payload       json.RawMessage `json:"payload,omitempty"`
}

// Form is the state holder for one visitor.  Create with New.
type Form struct {
	mu sync.Mutex

	v         *Validator
	submitter Submitter

	record        Record
	errors        Errors
	submitEnabled bool
	serverError   string
	payload       json.RawMessage
	disposed      bool
}

// New mounts a form: every value empty, no messages, submit disabled.
func New(v *Validator, s Submitter) *Form {
	f := &Form{
		v:         v,
		submitter: s,
		record:    NewRecord(v.Def()),
		errors:    NewErrors(v.Def()),
	}
	f.submitEnabled = v.Valid(f.record)
	return f
}

// Change applies one input event.  The field is validated on its own, then
// the whole record is re-checked to recompute the submit flag.
func (f *Form) Change(name string, value any) error {
	fd, ok := f.v.Def().Field(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.disposed {
		return ErrDisposed
	}

	val := Coerce(fd, value)
	f.record[name] = val

	msg := f.v.Field(name, val)
	f.errors[name] = msg
	if msg != "" {
		metrics.FieldErrorsTotal.WithLabelValues(name).Inc()
	}

	f.refresh()
	return nil
}

// Submit sends the current record to the collector.  On success the record
// is reset, the banner cleared, and the payload kept for display.  On failure
// the record is left alone so the visitor can retry, and the banner is set.
// The returned error describes the transport failure for logging; the
// visible outcome is already in the state.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.disposed {
		f.mu.Unlock()
		return ErrDisposed
	}
	if !f.submitEnabled {
		f.mu.Unlock()
		return ErrNotReady
	}
	rec := f.record.Clone()
	f.mu.Unlock()

	payload, err := f.submitter.Submit(ctx, rec)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.disposed {
		zap.S().Debugw("submission result dropped", "form", f.v.Def().ID, "err", err)
		return ErrDisposed
	}

	if err != nil {
		f.serverError = ServerErrorMessage
		metrics.SubmissionsTotal.WithLabelValues("failure").Inc()
		return fmt.Errorf("submit %s: %w", f.v.Def().ID, err)
	}

	f.record = NewRecord(f.v.Def())
	f.serverError = ""
	f.payload = payload
	f.refresh()
	metrics.SubmissionsTotal.WithLabelValues("success").Inc()
	return nil
}

// refresh recomputes the submit flag from the current record.  Caller holds mu.
func (f *Form) refresh() {
	f.submitEnabled = f.v.Valid(f.record)
}

// Snapshot returns a copy suitable for rendering.
func (f *Form) Snapshot() View {
	f.mu.Lock()
	defer f.mu.Unlock()

	errs := f.errors.Clone()
	for _, fd := range f.v.Def().Fields {
		if fd.HideError {
			errs[fd.Name] = ""
		}
	}

	return View{
		Values:        f.record.Clone(),
		Errors:        errs,
		SubmitEnabled: f.submitEnabled,
		ServerError:   f.serverError,
		Payload:       append(json.RawMessage(nil), f.payload...),
	}
}

// Errors returns every stored message, including ones hidden from display.
func (f *Form) Errors() Errors {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errors.Clone()
}

// SubmitEnabled reports the current value of the submit gate.
func (f *Form) SubmitEnabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitEnabled
}

// Dispose unmounts the form.  Later events and in-flight results are ignored.
func (f *Form) Dispose() {
	f.mu.Lock()
	f.disposed = true
	f.mu.Unlock()
}
