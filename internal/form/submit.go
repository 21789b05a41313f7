// internal/form/submit.go
//
// Forms subsystem: consolidated submit helper.
//
// Context
//   Browsers without scripting post the whole form at once.  HandleSubmit
//   turns that POST into the same events a scripted page would send: verify
//   the CSRF token, replay every field through Change, then Submit.  Handlers
//   stay terse and the state holder keeps a single update path.
//
//------------------------------------------------------------------------------

package form

import (
	"errors"
	"net/http"
)

// HandleSubmit parses r, verifies its token, applies each field, and submits.
// An unchecked checkbox is absent from the body and is applied as false.
//
// Errors:
//   - ErrCSRF      token missing, forged, or expired; state untouched.
//   - ErrNotReady  the record is not valid; field messages are updated.
//   - other        collector failure; the banner is already set.
func HandleSubmit(f *Form, csrf *CSRF, r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		return err
	}
	if err := csrf.Verify(r.PostForm.Get("csrf_token")); err != nil {
		return err
	}

	for _, fd := range f.v.Def().Fields {
		raw, present := r.PostForm[fd.Name]
		switch {
		case fd.Type == TypeCheckbox:
			if err := f.Change(fd.Name, present && len(raw) > 0 && checked(raw[0])); err != nil {
				return err
			}
		case present && len(raw) > 0:
			if err := f.Change(fd.Name, raw[0]); err != nil {
				return err
			}
		}
	}

	return f.Submit(r.Context())
}

// IsUserError reports whether err is caused by the visitor's input rather
// than by the collector or the server.
func IsUserError(err error) bool {
	return errors.Is(err, ErrCSRF) || errors.Is(err, ErrNotReady)
}
