// internal/form/definition.go
//
// Forms subsystem: YAML definition loader.
//
// Context
//   Every form is declared in a YAML file under "components/<comp>/forms/".
//   The file names the form, lists its fields in render order, and attaches
//   validation rules (go-playground/validator tags) plus user-facing messages
//   keyed by the failing tag.  At start-up RegisterForms parses every file and
//   stores the resulting FormDef in an in-memory registry.  The validator,
//   state holder, and renderer all read definitions from that registry, so
//   the YAML stays the single source of truth.
//
// Workflow
//   •  Structs mirror the YAML schema: FormDef → FieldDef → Option.
//   •  LoadFormDef parses one file and validates structural rules.
//   •  RegisterForms walks base directories and fills the registry.
//   •  GetFormDef offers read-only access by ID.
//
// Style
//   Full sentences, two spaces after periods, Oxford commas.
//
//------------------------------------------------------------------------------

package form

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Field types understood by the validator and renderer.
const (
	TypeText     = "text"
	TypeEmail    = "email"
	TypeTextarea = "textarea"
	TypeSelect   = "select"
	TypeCheckbox = "checkbox"
)

// -----------------------------------------------------------------------------
// Data structures
// -----------------------------------------------------------------------------

// FormDef represents one form definition loaded from YAML.
//
// ID is namespaced by component, e.g. “volunteer/signup”.  Fields are kept in
// declaration order, which is also render order.
type FormDef struct {
	ID     string     `yaml:"id"`
	Title  string     `yaml:"title"`
	Fields []FieldDef `yaml:"fields"`
}

// FieldDef describes a single input control and the rule it must satisfy.
type FieldDef struct {
	Name        string            `yaml:"name"`        // Record key.  Required.
	Label       string            `yaml:"label"`       // Human-readable label.  Required.
	Type        string            `yaml:"type"`        // text, email, textarea, select, checkbox.
	Placeholder string            `yaml:"placeholder"` // Select: label of the empty option.
	Rules       string            `yaml:"rules"`       // validator tag string, e.g. "required,email".
	Options     []Option          `yaml:"options"`     // Select only.
	Messages    map[string]string `yaml:"messages"`    // Failing tag → message.
	HideError   bool              `yaml:"hide_error"`  // Never render the inline error.
}

// Option is one entry of a select field.
type Option struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

// Field returns the named field definition.
func (fd *FormDef) Field(name string) (*FieldDef, bool) {
	for i := range fd.Fields {
		if fd.Fields[i].Name == name {
			return &fd.Fields[i], true
		}
	}
	return nil, false
}

// Names lists field names in declaration order.
func (fd *FormDef) Names() []string {
	out := make([]string, 0, len(fd.Fields))
	for _, f := range fd.Fields {
		out = append(out, f.Name)
	}
	return out
}

// allowed reports whether v is one of the field's option values.
func (f *FieldDef) allowed(v string) bool {
	for _, o := range f.Options {
		if o.Value == v {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------
// Registry
// -----------------------------------------------------------------------------

var (
	registryMu sync.RWMutex
	registry   = make(map[string]*FormDef)
)

// GetFormDef returns a parsed FormDef by composite ID (“component/form”).
// The boolean is false when the ID is unknown.
func GetFormDef(id string) (*FormDef, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	fd, ok := registry[id]
	return fd, ok
}

// -----------------------------------------------------------------------------
// Loader API
// -----------------------------------------------------------------------------

// LoadFormDef parses one YAML file, validates its structure, and returns a
// populated FormDef.  It never touches the global registry.
func LoadFormDef(path string) (*FormDef, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read form file %s: %w", path, err)
	}

	var fd FormDef
	if err := yaml.Unmarshal(raw, &fd); err != nil {
		return nil, fmt.Errorf("parse YAML %s: %w", path, err)
	}

	if err := validateFormDef(&fd, path); err != nil {
		return nil, err
	}
	return &fd, nil
}

// RegisterForms walks each base directory and loads every “*.yaml” found
// under “components/*/forms/”.  Earlier directories take precedence, so
// overrides are listed before defaults.
func RegisterForms(baseDirs []string) error {
	if len(baseDirs) == 0 {
		return errors.New("RegisterForms: no base directories provided")
	}

	seen := make(map[string]bool)
	for _, base := range baseDirs {
		root := filepath.Join(base, "components")
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() || !strings.HasSuffix(d.Name(), ".yaml") {
				return nil
			}
			if filepath.Base(filepath.Dir(path)) != "forms" {
				return nil
			}

			fd, err := LoadFormDef(path)
			if err != nil {
				return err
			}
			if seen[fd.ID] {
				zap.S().Debugw("form overridden", "form", fd.ID, "file", path)
				return nil
			}
			seen[fd.ID] = true
			register(fd)
			zap.S().Infow("form registered", "form", fd.ID, "fields", len(fd.Fields), "file", path)
			return nil
		})
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

func register(fd *FormDef) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[fd.ID] = fd
}

// -----------------------------------------------------------------------------
// Validation helpers
// -----------------------------------------------------------------------------

// validateFormDef enforces structural rules YAML cannot express.
func validateFormDef(fd *FormDef, path string) error {
	if fd.ID == "" {
		return fmt.Errorf("form definition %s: missing required 'id'", path)
	}
	if len(fd.Fields) == 0 {
		return fmt.Errorf("form definition %s: must have 'fields'", path)
	}

	names := make(map[string]struct{}, len(fd.Fields))
	for i := range fd.Fields {
		f := &fd.Fields[i]
		if err := validateField(f, path); err != nil {
			return err
		}
		if _, dup := names[f.Name]; dup {
			return fmt.Errorf("form %s: duplicate field name '%s'", path, f.Name)
		}
		names[f.Name] = struct{}{}
	}
	return nil
}

// validateField confirms that essential attributes are present and sane.
func validateField(f *FieldDef, path string) error {
	if f.Name == "" {
		return fmt.Errorf("form %s: field missing 'name'", path)
	}
	if f.Label == "" {
		return fmt.Errorf("form %s: field '%s' missing 'label'", path, f.Name)
	}

	switch f.Type {
	case TypeText, TypeEmail, TypeTextarea, TypeCheckbox:
	case TypeSelect:
		if len(f.Options) == 0 {
			return fmt.Errorf("form %s: select field '%s' has no options", path, f.Name)
		}
	case "":
		return fmt.Errorf("form %s: field '%s' missing 'type'", path, f.Name)
	default:
		return fmt.Errorf("form %s: field '%s' has unsupported type %q", path, f.Name, f.Type)
	}

	if err := checkRules(f); err != nil {
		return fmt.Errorf("form %s: field '%s' invalid rules %q: %v", path, f.Name, f.Rules, err)
	}
	return nil
}
