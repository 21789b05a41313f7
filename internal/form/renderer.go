// internal/form/renderer.go
//
// Forms subsystem: HTML renderer.
//
// Context
//   RenderForm turns a FormDef plus a View (the state holder's snapshot) into
//   the sign-up markup: a server-error banner, one labelled control per field
//   with its current value, inline error text beneath fields that have one,
//   the last collector payload in a <pre>, and a submit button that is
//   disabled unless the View says submission is allowed.
//
// Style
//   Output HTML is plain so themes can style via element selectors.  Each
//   input gets id="fld-{name}" and its error slot id="err-{name}", which the
//   page script uses to patch the DOM after a change event.
//
//------------------------------------------------------------------------------

package form

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"html/template"
)

// RenderOptions bundles per-render parameters.
type RenderOptions struct {
	Action    string // POST target of the <form>.
	CSRFToken string // Hidden csrf_token value.
}

// RenderForm returns the markup for fd in the state described by v.
func RenderForm(fd *FormDef, v View, opts RenderOptions) (template.HTML, error) {
	var buf bytes.Buffer

	buf.WriteString(`<form class="signup-form" method="post" action="` + html.EscapeString(opts.Action) +
		`" data-form="` + html.EscapeString(fd.ID) + `">` + "\n")

	if v.ServerError != "" {
		buf.WriteString(`<p class="error server-error">` + html.EscapeString(v.ServerError) + `</p>` + "\n")
	}

	for i := range fd.Fields {
		f := &fd.Fields[i]
		if err := writeField(&buf, f, v.Values[f.Name], v.Errors[f.Name]); err != nil {
			return "", err
		}
	}

	buf.WriteString(`<input type="hidden" name="csrf_token" value="` + html.EscapeString(opts.CSRFToken) + `">` + "\n")
	buf.WriteString(`<pre class="payload">` + html.EscapeString(prettyPayload(v.Payload)) + `</pre>` + "\n")

	disabled := ""
	if !v.SubmitEnabled {
		disabled = ` disabled`
	}
	buf.WriteString(`<button type="submit"` + disabled + `>Submit</button>` + "\n")
	buf.WriteString(`</form>`)

	return template.HTML(buf.String()), nil
}

// writeField emits one labelled control and, unless suppressed, its error.
func writeField(buf *bytes.Buffer, f *FieldDef, value any, msg string) error {
	name := html.EscapeString(f.Name)
	idAttr := `id="fld-` + name + `"`
	nameAttr := `name="` + name + `"`
	text, _ := value.(string)

	buf.WriteString(`<label for="fld-` + name + `" class="field field-` + name + `">` + "\n")

	switch f.Type {
	case TypeText, TypeEmail:
		buf.WriteString(html.EscapeString(f.Label) + "\n")
		buf.WriteString(`<input ` + idAttr + ` ` + nameAttr + ` type="` + f.Type + `" value="` + html.EscapeString(text) + `">` + "\n")

	case TypeTextarea:
		buf.WriteString(html.EscapeString(f.Label) + "\n")
		buf.WriteString(`<textarea ` + idAttr + ` ` + nameAttr + `>` + html.EscapeString(text) + `</textarea>` + "\n")

	case TypeSelect:
		buf.WriteString(html.EscapeString(f.Label) + "\n")
		buf.WriteString(`<select ` + idAttr + ` ` + nameAttr + `>` + "\n")
		buf.WriteString(`<option value="">` + html.EscapeString(f.Placeholder) + `</option>` + "\n")
		for _, o := range f.Options {
			sel := ""
			if o.Value == text {
				sel = ` selected`
			}
			buf.WriteString(`<option value="` + html.EscapeString(o.Value) + `"` + sel + `>` + html.EscapeString(o.Label) + `</option>` + "\n")
		}
		buf.WriteString(`</select>` + "\n")

	case TypeCheckbox:
		on, _ := value.(bool)
		checkedAttr := ""
		if on {
			checkedAttr = ` checked`
		}
		buf.WriteString(`<input ` + idAttr + ` ` + nameAttr + ` type="checkbox"` + checkedAttr + `>` + "\n")
		buf.WriteString(html.EscapeString(f.Label) + "\n")

	default:
		return fmt.Errorf("writeField: unsupported field type %q in form field %s", f.Type, f.Name)
	}

	if !f.HideError {
		hidden := ""
		if msg == "" {
			hidden = ` hidden`
		}
		buf.WriteString(`<p class="error" id="err-` + name + `"` + hidden + `>` + html.EscapeString(msg) + `</p>` + "\n")
	}

	buf.WriteString(`</label>` + "\n")
	return nil
}

// prettyPayload indents the collector echo the way the page shows it.  An
// absent payload renders as an empty list.
func prettyPayload(p json.RawMessage) string {
	if len(p) == 0 {
		return "[]"
	}
	var out bytes.Buffer
	if err := json.Indent(&out, p, "", "  "); err != nil {
		return string(p)
	}
	return out.String()
}
