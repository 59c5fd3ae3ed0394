package fieldmap

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gotrs-io/cemigrate/internal/blesta"
)

func defaultTables(t *testing.T) *Tables {
	t.Helper()
	tables, err := Default()
	require.NoError(t, err)
	return tables
}

func TestDefaultTablesLoad(t *testing.T) {
	tables := defaultTables(t)

	for _, name := range []string{"cpanel", "directadmin", "plesk", "apnscp", "centoswebpanel", "tcadmin", "enom", "gogetssl", "universal"} {
		mt, ok := tables.Type(name)
		require.True(t, ok, name)
		assert.NotEmpty(t, mt.Class, name)
	}
	assert.NotEmpty(t, tables.Settings)

	var registrars []string
	for _, mt := range tables.Registrars() {
		registrars = append(registrars, mt.Type)
	}
	assert.Equal(t, []string{"enom", "gogetssl"}, registrars)
}

func TestDetect(t *testing.T) {
	tables := defaultTables(t)

	cases := map[string]string{
		"cpanel":           "cpanel",
		"WHM":              "cpanel",
		"DirectAdmin":      "directadmin",
		"plesk12":          "plesk",
		"CWP":              "centoswebpanel",
		"enom":             "enom",
		"GoGetSSL":         "gogetssl",
		"interworx":        "universal",
		"":                 "universal",
		"  TCAdmin  ":      "tcadmin",
		"apiscp":           "apnscp",
		"universal":        "universal",
		"Centos Web Panel": "centoswebpanel",
	}
	for in, want := range cases {
		assert.Equal(t, want, tables.Detect(in).Type, in)
	}
}

func TestParseRejectsUnknownTransform(t *testing.T) {
	doc := `
types:
  - type: universal
    service_fields:
      - {source: a, dest: b, transform: rot13}
`
	_, err := Parse([]byte(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rot13")
	assert.Contains(t, err.Error(), "known: bool, html, join_lines")
}

func TestParseRequiresFallback(t *testing.T) {
	_, err := Load(strings.NewReader("types:\n  - type: cpanel\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "types")
}

func TestParseValidatesAgainstSchema(t *testing.T) {
	cases := map[string]string{
		"unknown kind": `
types:
  - {type: universal, kind: hosting}
`,
		"missing dest": `
types:
  - type: universal
    service_fields:
      - {source: a}
`,
		"unknown key": `
types:
  - {type: universal, klass: x}
`,
		"settings without source": `
types:
  - {type: universal}
settings:
  - {dest: b}
`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid mappings")
		})
	}

	_, err := Parse([]byte("types:\n  - {type: universal}\n  - {type: universal}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestTranslateOrderTransformThenSerialize(t *testing.T) {
	tr := NewTranslator(defaultTables(t))
	mappings := []FieldMapping{
		{Source: "Nameservers", Dest: "name_servers", Serialized: true, Transform: "nameservers"},
		{Source: "Password", Dest: "password", Encrypted: true},
		{Source: "Secret List", Dest: "secrets", Serialized: true, Encrypted: true, Transform: "nameservers"},
	}
	fields, err := tr.Translate(mappings, Record{
		"Nameservers": "NS1.example.com\nns2.example.com",
		"Password":    "hunter2",
		"Secret List": "a b",
	})
	require.NoError(t, err)
	require.Len(t, fields, 3)

	ns := fields[0]
	assert.Equal(t, "name_servers", ns.Key)
	assert.True(t, ns.Serialized)
	assert.False(t, ns.Encrypted)
	assert.True(t, strings.HasPrefix(ns.Value, "a:2:{"), ns.Value)
	assert.Contains(t, ns.Value, `s:15:"ns1.example.com"`)

	// encryption happens at write time, so the value is still plaintext here
	assert.Equal(t, blesta.Field{Key: "password", Value: "hunter2", Encrypted: true}, fields[1])

	both := fields[2]
	assert.True(t, both.Serialized)
	assert.True(t, both.Encrypted)
	assert.Contains(t, both.Value, `s:1:"a"`)
}

func TestTranslateDefaultsAndMissing(t *testing.T) {
	tr := NewTranslator(defaultTables(t))
	fields, err := tr.Translate([]FieldMapping{
		{Source: "Port", Dest: "port", Default: "2222"},
		{Source: "Missing", Dest: "missing"},
		{Source: "Use SSL", Dest: "use_ssl", Transform: "bool"},
	}, Record{"Port": " "})
	require.NoError(t, err)
	assert.Equal(t, []blesta.Field{
		{Key: "port", Value: "2222"},
		{Key: "use_ssl", Value: "false"},
	}, fields)
}

func TestTranslateWildcard(t *testing.T) {
	tables := defaultTables(t)
	universal, _ := tables.Type("universal")
	tr := NewTranslator(tables)

	fields, err := tr.Translate(universal.ServiceFields, Record{"Domain Name": "example.com", "User Name": "bob"})
	require.NoError(t, err)
	assert.Equal(t, []blesta.Field{
		{Key: "domain_name", Value: "example.com"},
		{Key: "user_name", Value: "bob"},
	}, fields)
}

type recordingSink struct {
	scope  blesta.FieldScope
	fields []blesta.Field
	calls  int
}

func (s *recordingSink) AddFields(_ context.Context, scope blesta.FieldScope, fields []blesta.Field) error {
	s.calls++
	s.scope = scope
	s.fields = fields
	return nil
}

func TestTranslatorWrite(t *testing.T) {
	tables := defaultTables(t)
	cpanel, _ := tables.Type("cpanel")
	tr := NewTranslator(tables)
	sink := &recordingSink{}
	scope := blesta.FieldScope{Table: blesta.ServiceFields, OwnerID: 77}

	n, err := tr.Write(context.Background(), sink, scope, cpanel.ServiceFields, Record{
		"Domain Name": "Example.COM", "User Name": "exmpl", "Password": "pw",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, scope, sink.scope)
	assert.Equal(t, "example.com", sink.fields[0].Value)
	assert.True(t, sink.fields[2].Encrypted)

	n, err = tr.Write(context.Background(), sink, scope, cpanel.ServiceFields, Record{})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, sink.calls, "empty translations are not written")
}

func TestTranslateDropsEmptyTransformResults(t *testing.T) {
	tr := NewTranslator(defaultTables(t))
	cpanel, _ := tr.Tables.Type("cpanel")

	fields, err := tr.Translate(cpanel.ServiceFields, Record{"User Name": "ada"})
	require.NoError(t, err)
	assert.Equal(t, []blesta.Field{{Key: "cpanel_username", Value: "ada"}}, fields)

	fields, err = tr.Translate([]FieldMapping{
		{Source: "Nameservers", Dest: "name_servers", Serialized: true, Transform: "nameservers"},
		{Source: "Use SSL", Dest: "use_ssl", Transform: "bool"},
	}, Record{})
	require.NoError(t, err)
	require.Len(t, fields, 1, "an empty nameserver list is not written")
	assert.Equal(t, blesta.Field{Key: "use_ssl", Value: "false"}, fields[0])

	fields, err = tr.Translate([]FieldMapping{
		{Source: "Nameservers", Dest: "name_servers", Serialized: true, Transform: "nameservers"},
	}, Record{"ns2": "NS2.example.com"})
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Contains(t, fields[0].Value, "ns2.example.com")
}

func TestTransforms(t *testing.T) {
	v, err := transforms["nameservers"]("", Record{"ns1": "A.example.com", "ns3": "c.example.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.example.com", "c.example.com"}, v)

	v, _ = transforms["term_months"]("24", nil)
	assert.Equal(t, "2 year", v)
	v, _ = transforms["term_months"]("3", nil)
	assert.Equal(t, "3 month", v)
	v, _ = transforms["term_months"]("0", nil)
	assert.Equal(t, "onetime", v)
	_, err = transforms["term_months"]("annual", nil)
	assert.Error(t, err)

	v, _ = transforms["join_lines"]("abc\r\ndef\n\nghi", nil)
	assert.Equal(t, "abcdefghi", v)

	v, _ = transforms["html"](`<p onclick="x()">Hi &amp; bye</p><script>alert(1)</script>`, nil)
	assert.Equal(t, "<p>Hi &amp; bye</p>", v)

	assert.ElementsMatch(t, []string{"nameservers", "bool", "lower", "trim", "term_months", "html", "join_lines"}, Transforms())
}

func TestTerm(t *testing.T) {
	for months, want := range map[int]struct {
		term   int
		period string
	}{
		0: {0, "onetime"}, 1: {1, "month"}, 3: {3, "month"}, 12: {1, "year"}, 24: {2, "year"}, 36: {3, "year"}, 18: {18, "month"},
	} {
		term, period := Term(months)
		assert.Equal(t, want.term, term, months)
		assert.Equal(t, want.period, period, months)
	}
}

func TestParsePricing(t *testing.T) {
	blob := `a:7:{s:6:"price1";s:4:"9.99";s:14:"price1included";s:1:"1";s:6:"setup1";s:1:"5";` +
		`s:7:"price12";s:2:"99";s:15:"price12included";s:1:"1";s:6:"price3";s:2:"25";s:14:"price3included";s:1:"0";}`

	prices, err := ParsePricing(blob)
	require.NoError(t, err)
	assert.Equal(t, []Price{
		{Months: 1, Price: 9.99, Setup: 5},
		{Months: 12, Price: 99},
	}, prices)

	prices, err = ParsePricing("")
	require.NoError(t, err)
	assert.Empty(t, prices)

	prices, err = ParsePricing(`a:2:{s:7:"price12";s:8:"1,250.00";s:15:"price12included";s:1:"1";}`)
	require.NoError(t, err)
	assert.Equal(t, []Price{{Months: 12, Price: 1250}}, prices)

	_, err = ParsePricing("not php")
	assert.Error(t, err)
}

func TestSnakeCase(t *testing.T) {
	assert.Equal(t, "domain_name", SnakeCase("Domain Name"))
	assert.Equal(t, "api_key", SnakeCase("  API-Key "))
	assert.Equal(t, "ns1", SnakeCase("ns1"))
}
