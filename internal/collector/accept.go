// internal/collector/accept.go
//
// Acceptance path of the bundled echo collector.
//
// Context
//   Every string field is stripped of markup first.  The collector then
//   re-checks every record against the same form definition the sign-up page
//   uses.  A record that fails is reported as a *ValidationError carrying the
//   full error record; callers answer 422 with it.  A record that passes gets
//   an ID and a timestamp and, when a store is configured, is persisted
//   before it is echoed.
//
//------------------------------------------------------------------------------

package collector

import (
	"context"
	"html"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/yanizio/volunteer/internal/form"
	"github.com/yanizio/volunteer/internal/metrics"
)

// ValidationError lists the messages of a rejected record.
type ValidationError struct {
	Errors form.Errors
}

func (e *ValidationError) Error() string { return "collector: record failed validation" }

// stripTags removes every element and keeps the text.
var stripTags = bluemonday.StrictPolicy()

// Acceptor validates, stamps, and optionally stores sign-ups.
type Acceptor struct {
	v     *form.Validator
	store *Store // nil disables persistence
	now   func() time.Time
}

// NewAcceptor checks records with v.  A nil store echoes without saving.
func NewAcceptor(v *form.Validator, store *Store) *Acceptor {
	return &Acceptor{v: v, store: store, now: time.Now}
}

// Accept returns the stored sign-up for rec.
func (a *Acceptor) Accept(ctx context.Context, rec form.Record) (Signup, error) {
	clean := form.NewRecord(a.v.Def())
	for _, f := range a.v.Def().Fields {
		v := form.Coerce(&f, rec[f.Name])
		if str, ok := v.(string); ok {
			v = html.UnescapeString(stripTags.Sanitize(str))
		}
		clean[f.Name] = v
	}

	if errs := a.v.All(clean); errs.Any() {
		metrics.CollectorRecordsTotal.WithLabelValues("rejected").Inc()
		return Signup{}, &ValidationError{Errors: errs}
	}

	s := FromRecord(clean)
	s.ID = uuid.NewString()
	s.CreatedAt = a.now().UTC().Truncate(time.Microsecond)

	if a.store != nil {
		if err := a.store.Insert(ctx, s); err != nil {
			metrics.CollectorRecordsTotal.WithLabelValues("error").Inc()
			return Signup{}, err
		}
	}

	metrics.CollectorRecordsTotal.WithLabelValues("accepted").Inc()
	return s, nil
}
