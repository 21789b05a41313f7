package form

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderForm_InitialState(t *testing.T) {
	f := newForm(t, &fakeCollector{})

	out, err := RenderForm(loadSignup(t), f.Snapshot(), RenderOptions{Action: "/volunteer", CSRFToken: "tok"})
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, `<button type="submit" disabled>Submit</button>`)
	assert.Contains(t, html, `<textarea id="fld-motivation" name="motivation"></textarea>`)
	assert.Contains(t, html, `<option value="">--Please choose an option--</option>`)
	assert.Contains(t, html, `<option value="Admin Work">Admin</option>`)
	assert.Contains(t, html, `name="csrf_token" value="tok"`)
	assert.Contains(t, html, `<pre class="payload">[]</pre>`)
	assert.NotContains(t, html, "server-error")
}

func TestRenderForm_ErrorsAndCheckboxSuppression(t *testing.T) {
	f := newForm(t, &fakeCollector{})
	require.NoError(t, f.Change("email", "not-an-email"))
	require.NoError(t, f.Change("terms", false))

	out, err := RenderForm(loadSignup(t), f.Snapshot(), RenderOptions{Action: "/volunteer"})
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, `<p class="error" id="err-email">must be a valid email address</p>`)
	assert.Contains(t, html, `value="not-an-email"`)
	assert.NotContains(t, html, "please agree with us")
	assert.NotContains(t, html, `id="err-terms"`)
}

func TestRenderForm_ValidStateAndBanner(t *testing.T) {
	v := View{
		Values:        validRecord(),
		Errors:        NewErrors(loadSignup(t)),
		SubmitEnabled: true,
		ServerError:   ServerErrorMessage,
		Payload:       json.RawMessage(`{"id":"1"}`),
	}

	out, err := RenderForm(loadSignup(t), v, RenderOptions{Action: "/volunteer"})
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, `<button type="submit">Submit</button>`)
	assert.Contains(t, html, `<p class="error server-error">oops! something happened!</p>`)
	assert.Contains(t, html, `<option value="Tabling" selected>Tabling</option>`)
	assert.Contains(t, html, `type="checkbox" checked>`)
	assert.True(t, strings.Contains(html, "&#34;id&#34;: &#34;1&#34;"), "payload is pretty-printed and escaped")
}

func TestRenderForm_EscapesValues(t *testing.T) {
	f := newForm(t, &fakeCollector{})
	require.NoError(t, f.Change("name", `<script>"x"</script>`))

	out, err := RenderForm(loadSignup(t), f.Snapshot(), RenderOptions{})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "<script>")
}
