// Package fieldmap translates flat Clientexec field sets into Blesta meta
// records using declarative per-module-type tables.
package fieldmap

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed mappings.yaml
var defaultMappings []byte

//go:embed mappings.schema.json
var mappingsSchema []byte

var schemaLoader = gojsonschema.NewBytesLoader(mappingsSchema)

// Wildcard as a source copies every unmapped field of the record.
const Wildcard = "*"

// Fallback is the module type used when no other type matches.
const Fallback = "universal"

// FieldMapping maps one source field onto one destination meta key.
type FieldMapping struct {
	Source     string `yaml:"source"`
	Dest       string `yaml:"dest"`
	Serialized bool   `yaml:"serialized"`
	Encrypted  bool   `yaml:"encrypted"`
	Transform  string `yaml:"transform"`
	Default    string `yaml:"default"`
}

// Kind tells where a module type's rows come from.
type Kind string

const (
	// KindPanel rows are built from Clientexec servers.
	KindPanel Kind = "panel"
	// KindRegistrar rows are built from registrar plugin settings.
	KindRegistrar Kind = "registrar"
)

// ModuleType is the mapping table set for one Blesta module.
type ModuleType struct {
	Type          string         `yaml:"type"`
	Kind          Kind           `yaml:"kind"`
	Name          string         `yaml:"name"`
	Class         string         `yaml:"class"`
	Version       string         `yaml:"version"`
	Match         []string       `yaml:"match"`
	RowMeta       []FieldMapping `yaml:"row_meta"`
	PackageMeta   []FieldMapping `yaml:"package_meta"`
	ServiceFields []FieldMapping `yaml:"service_fields"`
}

// Tables holds every module type plus the company settings table.
type Tables struct {
	Types    []*ModuleType  `yaml:"types"`
	Settings []FieldMapping `yaml:"settings"`

	byType map[string]*ModuleType
}

// Default returns the tables compiled into the binary.
func Default() (*Tables, error) {
	return Parse(defaultMappings)
}

// LoadFile reads tables from a YAML file, replacing the built-in ones.
func LoadFile(path string) (*Tables, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mappings: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load reads tables from r.
func Load(r io.Reader) (*Tables, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read mappings: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a mappings document. The document structure
// is checked against the embedded JSON schema; transform names are checked
// against the registry.
func Parse(data []byte) (*Tables, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse mappings: %w", err)
	}
	if err := validate(doc); err != nil {
		return nil, err
	}

	t := &Tables{}
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("failed to parse mappings: %w", err)
	}
	if err := t.index(); err != nil {
		return nil, err
	}
	return t, nil
}

func validate(doc any) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("failed to validate mappings: %w", err)
	}
	if result.Valid() {
		return nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}
	return fmt.Errorf("invalid mappings: %s", strings.Join(problems, "; "))
}

func (t *Tables) index() error {
	t.byType = make(map[string]*ModuleType, len(t.Types))
	for _, mt := range t.Types {
		if _, dup := t.byType[mt.Type]; dup {
			return fmt.Errorf("mappings: duplicate module type %q", mt.Type)
		}
		if mt.Kind == "" {
			mt.Kind = KindPanel
		}
		for table, fields := range map[string][]FieldMapping{
			"row_meta": mt.RowMeta, "package_meta": mt.PackageMeta, "service_fields": mt.ServiceFields,
		} {
			if err := checkTransforms(fields); err != nil {
				return fmt.Errorf("mappings: %s.%s: %w", mt.Type, table, err)
			}
		}
		t.byType[mt.Type] = mt
	}
	if err := checkTransforms(t.Settings); err != nil {
		return fmt.Errorf("mappings: settings: %w", err)
	}
	return nil
}

func checkTransforms(fields []FieldMapping) error {
	for _, f := range fields {
		if f.Transform == "" {
			continue
		}
		if _, ok := transforms[f.Transform]; !ok {
			return fmt.Errorf("field %s: unknown transform %q (known: %s)", f.Source, f.Transform, strings.Join(Transforms(), ", "))
		}
	}
	return nil
}

// Type returns the tables of a module type
func (t *Tables) Type(name string) (*ModuleType, bool) {
	mt, ok := t.byType[name]
	return mt, ok
}

// Detect infers the module type from a Clientexec plugin or registrar name.
// Types are tried in declaration order; the fallback type is returned when
// nothing matches.
func (t *Tables) Detect(name string) *ModuleType {
	n := strings.ToLower(strings.TrimSpace(name))
	if n != "" {
		for _, mt := range t.Types {
			if mt.Type == n {
				return mt
			}
			for _, m := range mt.Match {
				if strings.Contains(n, strings.ToLower(m)) {
					return mt
				}
			}
		}
	}
	return t.byType[Fallback]
}

// Registrars returns the types whose rows come from plugin settings.
func (t *Tables) Registrars() []*ModuleType {
	var out []*ModuleType
	for _, mt := range t.Types {
		if mt.Kind == KindRegistrar {
			out = append(out, mt)
		}
	}
	return out
}
