package fieldmap

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/elliotchance/phpserialize"

	"github.com/gotrs-io/cemigrate/internal/blesta"
)

// Sink receives translated fields. blesta.Destination implements it.
type Sink interface {
	AddFields(ctx context.Context, scope blesta.FieldScope, fields []blesta.Field) error
}

// Translator applies mapping tables to source records.
type Translator struct {
	Tables *Tables
}

// NewTranslator creates a translator over tables
func NewTranslator(tables *Tables) *Translator {
	return &Translator{Tables: tables}
}

// Translate maps rec through mappings. Per field the transform runs first,
// then PHP serialization. Encryption is left to the sink, which encrypts
// flagged values at write time.
func (t *Translator) Translate(mappings []FieldMapping, rec Record) ([]blesta.Field, error) {
	var fields []blesta.Field
	mapped := make(map[string]bool, len(mappings))
	var wildcard *FieldMapping

	for i := range mappings {
		m := mappings[i]
		if m.Source == Wildcard {
			wildcard = &mappings[i]
			continue
		}
		mapped[m.Source] = true

		raw, ok := rec[m.Source]
		if !ok || strings.TrimSpace(raw) == "" {
			raw = m.Default
		}
		if raw == "" && m.Transform == "" {
			continue
		}
		f, ok, err := translate(m, m.Dest, raw, rec)
		if err != nil {
			return nil, err
		}
		if ok {
			fields = append(fields, f)
		}
	}

	if wildcard != nil {
		keys := make([]string, 0, len(rec))
		for k := range rec {
			if !mapped[k] {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			f, ok, err := translate(*wildcard, SnakeCase(k), rec[k], rec)
			if err != nil {
				return nil, err
			}
			if ok {
				fields = append(fields, f)
			}
		}
	}
	return fields, nil
}

// translate reports false when a transform left nothing to write.
func translate(m FieldMapping, key, raw string, rec Record) (blesta.Field, bool, error) {
	var value any = raw
	if m.Transform != "" {
		fn, ok := transforms[m.Transform]
		if !ok {
			return blesta.Field{}, false, fmt.Errorf("unknown transform %q", m.Transform)
		}
		v, err := fn(raw, rec)
		if err != nil {
			return blesta.Field{}, false, fmt.Errorf("field %s: %w", m.Source, err)
		}
		if empty(v) {
			return blesta.Field{}, false, nil
		}
		value = v
	}

	f := blesta.Field{Key: key, Serialized: m.Serialized, Encrypted: m.Encrypted}
	if m.Serialized {
		out, err := phpserialize.Marshal(value, nil)
		if err != nil {
			return blesta.Field{}, false, fmt.Errorf("field %s: failed to serialize: %w", m.Source, err)
		}
		f.Value = string(out)
		return f, true, nil
	}

	switch v := value.(type) {
	case string:
		f.Value = v
	case []string:
		f.Value = strings.Join(v, ",")
	default:
		f.Value = fmt.Sprint(v)
	}
	return f, true, nil
}

func empty(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []string:
		return len(v) == 0
	case map[string]string:
		return len(v) == 0
	}
	return false
}

// Write translates rec and writes the result to sink under scope. It
// returns the number of fields written.
func (t *Translator) Write(ctx context.Context, sink Sink, scope blesta.FieldScope, mappings []FieldMapping, rec Record) (int, error) {
	fields, err := t.Translate(mappings, rec)
	if err != nil {
		return 0, err
	}
	if len(fields) == 0 {
		return 0, nil
	}
	if err := sink.AddFields(ctx, scope, fields); err != nil {
		return 0, err
	}
	return len(fields), nil
}

// SnakeCase turns a Clientexec label such as "Domain Name" into domain_name.
func SnakeCase(s string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if underscore && b.Len() > 0 {
				b.WriteByte('_')
			}
			underscore = false
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		underscore = true
	}
	return b.String()
}
