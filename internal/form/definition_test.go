package form

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const signupPath = "../../components/volunteer/forms/signup.yaml"

// loadSignup parses the shipped sign-up definition.
func loadSignup(t *testing.T) *FormDef {
	t.Helper()
	fd, err := LoadFormDef(signupPath)
	if err != nil {
		t.Fatalf("LoadFormDef: %v", err)
	}
	return fd
}

func writeDef(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "form.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestLoadFormDef_Signup(t *testing.T) {
	fd := loadSignup(t)

	if fd.ID != "volunteer/signup" {
		t.Fatalf("id = %q", fd.ID)
	}
	want := []string{"name", "email", "motivation", "positions", "terms"}
	if diff := cmp.Diff(want, fd.Names()); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}

	pos, ok := fd.Field("positions")
	if !ok {
		t.Fatal("positions missing")
	}
	wantOpts := []Option{
		{Value: "Newsletter", Label: "Newsletter"},
		{Value: "Yard Work", Label: "Yard Work"},
		{Value: "Admin Work", Label: "Admin"},
		{Value: "Tabling", Label: "Tabling"},
	}
	if diff := cmp.Diff(wantOpts, pos.Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}

	terms, _ := fd.Field("terms")
	if !terms.HideError {
		t.Fatal("terms error should be hidden")
	}
}

func TestLoadFormDef_StructuralErrors(t *testing.T) {
	cases := map[string]string{
		"missing id": `
fields:
  - {name: a, label: A, type: text}`,
		"no fields": `
id: x/y`,
		"duplicate": `
id: x/y
fields:
  - {name: a, label: A, type: text}
  - {name: a, label: B, type: text}`,
		"missing label": `
id: x/y
fields:
  - {name: a, type: text}`,
		"unknown type": `
id: x/y
fields:
  - {name: a, label: A, type: slider}`,
		"select without options": `
id: x/y
fields:
  - {name: a, label: A, type: select}`,
		"unknown rule": `
id: x/y
fields:
  - {name: a, label: A, type: text, rules: "required,notarule"}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadFormDef(writeDef(t, body)); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}
}

func TestRegisterForms(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "components", "demo", "forms")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	body := "id: demo/contact\nfields:\n  - {name: a, label: A, type: text, rules: required}\n"
	if err := os.WriteFile(filepath.Join(dir, "contact.yaml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	// Non-form YAML elsewhere in the component is ignored.
	if err := os.WriteFile(filepath.Join(base, "components", "demo", "other.yaml"), []byte("nope: ["), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := RegisterForms([]string{base}); err != nil {
		t.Fatalf("RegisterForms: %v", err)
	}
	fd, ok := GetFormDef("demo/contact")
	if !ok || len(fd.Fields) != 1 {
		t.Fatalf("demo/contact not registered: %#v", fd)
	}

	if err := RegisterForms(nil); err == nil {
		t.Fatal("expected error for empty dir list")
	}
}
