package form

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// fakeCollector records calls and answers with a canned result.
type fakeCollector struct {
	mu      sync.Mutex
	calls   []Record
	payload json.RawMessage
	err     error
}

func (c *fakeCollector) Submit(_ context.Context, rec Record) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, rec)
	return c.payload, c.err
}

func newForm(t *testing.T, c Submitter) *Form {
	t.Helper()
	return New(NewValidator(loadSignup(t)), c)
}

func fill(t *testing.T, f *Form) {
	t.Helper()
	for name, val := range validRecord() {
		require.NoError(t, f.Change(name, val))
	}
}

func TestNew_StartsEmptyAndDisabled(t *testing.T) {
	f := newForm(t, &fakeCollector{})
	v := f.Snapshot()

	want := Record{"name": "", "email": "", "motivation": "", "positions": "", "terms": false}
	if diff := cmp.Diff(want, v.Values); diff != "" {
		t.Fatalf("initial record mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, v.Errors.Any())
	assert.False(t, v.SubmitEnabled)
	assert.Empty(t, v.ServerError)
}

func TestChange_EmailErrorSetAndCleared(t *testing.T) {
	f := newForm(t, &fakeCollector{})

	require.NoError(t, f.Change("email", "not-an-email"))
	v := f.Snapshot()
	assert.NotEmpty(t, v.Errors["email"])
	assert.False(t, v.SubmitEnabled)

	require.NoError(t, f.Change("email", "a@b.com"))
	assert.Empty(t, f.Snapshot().Errors["email"])
}

func TestChange_SubmitEnabledOnlyWhenAllValid(t *testing.T) {
	f := newForm(t, &fakeCollector{})

	steps := []struct {
		name  string
		value any
	}{
		{"name", "Ada"},
		{"email", "a@b.com"},
		{"motivation", "help"},
		{"positions", "Tabling"},
		{"terms", true},
	}
	for i, s := range steps {
		require.NoError(t, f.Change(s.name, s.value))
		last := i == len(steps)-1
		assert.Equal(t, last, f.SubmitEnabled(), "after %s", s.name)
	}

	require.NoError(t, f.Change("terms", false))
	assert.False(t, f.SubmitEnabled(), "unchecking terms disables submit")
}

func TestChange_CheckboxErrorHiddenFromView(t *testing.T) {
	f := newForm(t, &fakeCollector{})

	require.NoError(t, f.Change("terms", false))

	assert.Equal(t, "please agree with us", f.Errors()["terms"])
	assert.Empty(t, f.Snapshot().Errors["terms"])
}

func TestChange_UnknownField(t *testing.T) {
	f := newForm(t, &fakeCollector{})
	err := f.Change("nickname", "x")
	assert.True(t, errors.Is(err, ErrUnknownField))
}

func TestSubmit_SuccessResetsRecord(t *testing.T) {
	c := &fakeCollector{payload: json.RawMessage(`{"id":"1"}`)}
	f := newForm(t, c)
	fill(t, f)

	c.err = errors.New("down")
	require.Error(t, f.Submit(context.Background()))
	require.Equal(t, ServerErrorMessage, f.Snapshot().ServerError)

	c.err = nil
	require.NoError(t, f.Submit(context.Background()))

	v := f.Snapshot()
	assert.Equal(t, NewRecord(loadSignup(t)), v.Values)
	assert.Empty(t, v.ServerError)
	assert.False(t, v.SubmitEnabled)
	assert.JSONEq(t, `{"id":"1"}`, string(v.Payload))
	require.Len(t, c.calls, 2)
	assert.Equal(t, validRecord(), c.calls[1])
}

func TestSubmit_FailureKeepsRecord(t *testing.T) {
	c := &fakeCollector{err: errors.New("boom")}
	f := newForm(t, c)
	fill(t, f)

	err := f.Submit(context.Background())
	require.Error(t, err)

	v := f.Snapshot()
	assert.Equal(t, validRecord(), v.Values)
	assert.Equal(t, ServerErrorMessage, v.ServerError)
	assert.True(t, v.SubmitEnabled)
}

func TestSubmit_BannerSurvivesEdits(t *testing.T) {
	f := newForm(t, &fakeCollector{err: errors.New("boom")})
	fill(t, f)
	_ = f.Submit(context.Background())

	require.NoError(t, f.Change("name", "Grace"))
	assert.Equal(t, ServerErrorMessage, f.Snapshot().ServerError)
}

func TestSubmit_RejectedWhileInvalid(t *testing.T) {
	c := &fakeCollector{}
	f := newForm(t, c)

	err := f.Submit(context.Background())
	assert.True(t, errors.Is(err, ErrNotReady))
	assert.Empty(t, c.calls)
}

func TestDispose_DropsInFlightResult(t *testing.T) {
	defer goleak.VerifyNone(t)

	release := make(chan struct{})
	started := make(chan struct{})
	var f *Form
	f = newForm(t, SubmitterFunc(func(context.Context, Record) (json.RawMessage, error) {
		close(started)
		<-release
		return json.RawMessage(`{"ok":true}`), nil
	}))
	fill(t, f)

	done := make(chan error, 1)
	go func() { done <- f.Submit(context.Background()) }()

	<-started
	// Events are still accepted while the request is in flight.
	require.NoError(t, f.Change("motivation", "help a lot"))
	f.Dispose()
	close(release)

	assert.True(t, errors.Is(<-done, ErrDisposed))
	v := f.Snapshot()
	assert.Empty(t, v.Payload)
	assert.Equal(t, "help a lot", v.Values["motivation"])
	assert.True(t, errors.Is(f.Change("name", "x"), ErrDisposed))
}

func TestSnapshot_IsACopy(t *testing.T) {
	f := newForm(t, &fakeCollector{})
	v := f.Snapshot()
	v.Values["name"] = "mutated"
	v.Errors["name"] = "mutated"

	assert.Equal(t, "", f.Snapshot().Values["name"])
	assert.Equal(t, "", f.Errors()["name"])
}
