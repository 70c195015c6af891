package catalog

import (
	"testing"
	"time"

	"grievanceportal/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog_Loads(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	jb, err := c.Department("jal-board")
	require.NoError(t, err)
	assert.Equal(t, "JB", jb.Prefix)
	assert.Equal(t, 12, jb.Len())
	assert.Equal(t, "name", jb.Questions[0].ID)

	el, err := c.Department("electricity")
	require.NoError(t, err)
	assert.Equal(t, 4*time.Hour, el.ResponseWindows.For(model.PriorityHigh))
	assert.Equal(t, "electricity.issueType", el.Questions[7].TextKey)

	assert.Len(t, c.Departments(), 2)
}

func TestDepartment_Unknown(t *testing.T) {
	_, err := MustDefault().Department("roads")
	assert.ErrorIs(t, err, ErrUnknownDepartment)
}

func TestResolveLanguage(t *testing.T) {
	c := MustDefault()

	lang, err := c.ResolveLanguage("")
	require.NoError(t, err)
	assert.Equal(t, "hi", lang)

	lang, err = c.ResolveLanguage("en")
	require.NoError(t, err)
	assert.Equal(t, "en", lang)

	_, err = c.ResolveLanguage("fr")
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
}

func TestLocalize_SharedKeyAcrossLanguages(t *testing.T) {
	c := MustDefault()
	jb, _ := c.Department("jal-board")
	issue := jb.Questions[5]

	en := c.Localize(issue, "en")
	hi := c.Localize(issue, "hi")
	assert.Equal(t, "What is your main issue?", en.Prompt)
	assert.True(t, en.HasOption("Water Leakage"))
	assert.Len(t, hi.Options, len(en.Options))
	assert.False(t, hi.HasOption("Water Leakage"))
}

func TestResponseWindows_ForUnknownPriorityIsMedium(t *testing.T) {
	w := ResponseWindows{High: time.Hour, Medium: 2 * time.Hour, Low: 3 * time.Hour}
	assert.Equal(t, 2*time.Hour, w.For(model.Priority("bogus")))
}

func TestValidators(t *testing.T) {
	jb, _ := MustDefault().Department("jal-board")
	byID := map[string]*Question{}
	for _, q := range jb.Questions {
		byID[q.ID] = q
	}

	phone := byID["phone"].Validator()
	require.NotNil(t, phone)
	assert.True(t, phone("9876543210"))
	assert.False(t, phone("98765"))
	assert.False(t, phone("98765432AB"))

	name := byID["name"].Validator()
	assert.True(t, name("राम")) // three runes, more bytes
	assert.False(t, name("Al"))

	email := byID["email"].Validator()
	assert.True(t, email("citizen@example.in"))
	assert.False(t, email("Citizen <citizen@example.in>"))
	assert.False(t, email("not-an-email"))

	assert.Nil(t, byID["landmark"].Validator())
}

func TestParse_Rejects(t *testing.T) {
	header := `
languages: [en]
defaultLanguage: en
messages:
  invalidAnswer: {en: bad}
  noInformation: {en: none}
  completionTitle: {en: done}
  completionSubtitle: {en: "{priority} {window}"}
`
	tests := []struct {
		name string
		body string
	}{
		{"no departments", `texts: {}`},
		{"missing prompt", `
texts: {}
departments:
  - id: d
    prefix: D
    responseWindows: {high: 1h, medium: 2h, low: 3h}
    questions: [{id: q, kind: short-text}]`},
		{"select without options", `
texts: {q: {en: {prompt: "Q?"}}}
departments:
  - id: d
    prefix: D
    responseWindows: {high: 1h, medium: 2h, low: 3h}
    questions: [{id: q, kind: single-select}]`},
		{"duplicate question", `
texts: {q: {en: {prompt: "Q?"}}}
departments:
  - id: d
    prefix: D
    responseWindows: {high: 1h, medium: 2h, low: 3h}
    questions: [{id: q, kind: short-text}, {id: q, kind: short-text}]`},
		{"unknown rule", `
texts: {q: {en: {prompt: "Q?"}}}
departments:
  - id: d
    prefix: D
    responseWindows: {high: 1h, medium: 2h, low: 3h}
    questions: [{id: q, kind: short-text, rules: [{type: luhn}]}]`},
		{"unset windows", `
texts: {q: {en: {prompt: "Q?"}}}
departments:
  - id: d
    prefix: D
    questions: [{id: q, kind: short-text}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(header + tt.body))
			assert.Error(t, err)
		})
	}
}

func TestParse_MissingMessage(t *testing.T) {
	_, err := Parse([]byte(`
languages: [en]
defaultLanguage: en
messages: {}
`))
	assert.ErrorContains(t, err, "invalidAnswer")
}
