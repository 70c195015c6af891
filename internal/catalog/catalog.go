// Package catalog loads the localized, per-department question catalogs that
// drive the intake wizard.
//
// Question definitions carry no display text. Prompts, placeholders and
// options are resolved through a single table keyed by (text key, language),
// so every language variant of a department shares one ordered question list.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"grievanceportal/internal/model"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

var (
	ErrUnknownDepartment   = errors.New("unknown department")
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

// Message keys
const (
	MsgInvalidAnswer      = "invalidAnswer"
	MsgNoInformation      = "noInformation"
	MsgCompletionTitle    = "completionTitle"
	MsgCompletionSubtitle = "completionSubtitle"
)

var requiredMessages = []string{MsgInvalidAnswer, MsgNoInformation, MsgCompletionTitle, MsgCompletionSubtitle}

// Kind is the input widget a question expects
type Kind string

const (
	KindShortText    Kind = "short-text"
	KindLongText     Kind = "long-text"
	KindSingleSelect Kind = "single-select"
	KindPhone        Kind = "phone"
	KindEmail        Kind = "email"
	KindNumeric      Kind = "numeric"
)

func (k Kind) valid() bool {
	switch k {
	case KindShortText, KindLongText, KindSingleSelect, KindPhone, KindEmail, KindNumeric:
		return true
	}
	return false
}

// Question is an immutable question definition
type Question struct {
	ID       string `yaml:"id"`
	TextKey  string `yaml:"textKey"`
	Kind     Kind   `yaml:"kind"`
	Optional bool   `yaml:"optional"`
	Rules    []Rule `yaml:"rules"`

	validator Validator
}

// Validator returns the compiled rule predicate, or nil when the question
// only requires a non-empty answer.
func (q *Question) Validator() Validator {
	return q.validator
}

// ResponseWindows maps each priority to the promised response time
type ResponseWindows struct {
	High   time.Duration `yaml:"high"`
	Medium time.Duration `yaml:"medium"`
	Low    time.Duration `yaml:"low"`
}

// For returns the window for a priority. Unknown priorities get the medium window.
func (w ResponseWindows) For(p model.Priority) time.Duration {
	switch p {
	case model.PriorityHigh:
		return w.High
	case model.PriorityLow:
		return w.Low
	default:
		return w.Medium
	}
}

// Department is one complaint-handling department and its question flow
type Department struct {
	ID              string            `yaml:"id"`
	Prefix          string            `yaml:"prefix"`
	Rubric          string            `yaml:"rubric"`
	Names           map[string]string `yaml:"names"`
	ResponseWindows ResponseWindows   `yaml:"responseWindows"`
	Questions       []*Question       `yaml:"questions"`
}

// Len returns the number of questions in the flow
func (d *Department) Len() int {
	return len(d.Questions)
}

// LocalizedQuestion is the display text for a question in one language
type LocalizedQuestion struct {
	Prompt      string   `yaml:"prompt" json:"prompt"`
	Placeholder string   `yaml:"placeholder" json:"placeholder,omitempty"`
	Options     []string `yaml:"options" json:"options,omitempty"`
}

// HasOption reports whether v is one of the localized options
func (l LocalizedQuestion) HasOption(v string) bool {
	for _, o := range l.Options {
		if o == v {
			return true
		}
	}
	return false
}

type document struct {
	Languages       []string                                `yaml:"languages"`
	DefaultLanguage string                                  `yaml:"defaultLanguage"`
	Messages        map[string]map[string]string            `yaml:"messages"`
	Texts           map[string]map[string]LocalizedQuestion `yaml:"texts"`
	Departments     []*Department                           `yaml:"departments"`
}

// Catalog is the full set of departments plus their localized text
type Catalog struct {
	languages       []string
	defaultLanguage string
	messages        map[string]map[string]string
	texts           map[string]map[string]LocalizedQuestion
	departments     map[string]*Department
	order           []*Department
}

// Load reads the catalog at path, or the embedded catalog when path is empty
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Parse(defaultCatalog)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// MustDefault returns the embedded catalog and panics if it is invalid
func MustDefault() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(err)
	}
	return c
}

// Parse decodes and validates a YAML catalog document
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := &Catalog{
		languages:       doc.Languages,
		defaultLanguage: doc.DefaultLanguage,
		messages:        doc.Messages,
		texts:           doc.Texts,
		departments:     make(map[string]*Department, len(doc.Departments)),
	}
	if err := c.validate(doc.Departments); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) validate(depts []*Department) error {
	if len(c.languages) == 0 {
		return errors.New("catalog: no languages declared")
	}
	if !c.SupportsLanguage(c.defaultLanguage) {
		return fmt.Errorf("catalog: default language %q not declared", c.defaultLanguage)
	}
	for _, key := range requiredMessages {
		for _, lang := range c.languages {
			if c.messages[key][lang] == "" {
				return fmt.Errorf("catalog: message %q missing for %q", key, lang)
			}
		}
	}
	if len(depts) == 0 {
		return errors.New("catalog: no departments")
	}

	for _, d := range depts {
		if d.ID == "" || d.Prefix == "" {
			return fmt.Errorf("catalog: department %q needs an id and prefix", d.ID)
		}
		if _, dup := c.departments[d.ID]; dup {
			return fmt.Errorf("catalog: duplicate department %q", d.ID)
		}
		w := d.ResponseWindows
		if w.High <= 0 || w.Medium <= 0 || w.Low <= 0 {
			return fmt.Errorf("catalog: department %q has unset response windows", d.ID)
		}
		if len(d.Questions) == 0 {
			return fmt.Errorf("catalog: department %q has no questions", d.ID)
		}

		seen := make(map[string]bool, len(d.Questions))
		for _, q := range d.Questions {
			if err := c.prepareQuestion(d.ID, q, seen); err != nil {
				return err
			}
		}

		c.departments[d.ID] = d
		c.order = append(c.order, d)
	}
	return nil
}

func (c *Catalog) prepareQuestion(deptID string, q *Question, seen map[string]bool) error {
	if q.ID == "" {
		return fmt.Errorf("catalog: %s: question without id", deptID)
	}
	if seen[q.ID] {
		return fmt.Errorf("catalog: %s: duplicate question %q", deptID, q.ID)
	}
	seen[q.ID] = true

	if !q.Kind.valid() {
		return fmt.Errorf("catalog: %s/%s: unknown kind %q", deptID, q.ID, q.Kind)
	}
	if q.TextKey == "" {
		q.TextKey = q.ID
	}
	for _, lang := range c.languages {
		text, ok := c.texts[q.TextKey][lang]
		if !ok || strings.TrimSpace(text.Prompt) == "" {
			return fmt.Errorf("catalog: %s/%s: no %q prompt for text key %q", deptID, q.ID, lang, q.TextKey)
		}
		if q.Kind == KindSingleSelect && len(text.Options) == 0 {
			return fmt.Errorf("catalog: %s/%s: single-select without %q options", deptID, q.ID, lang)
		}
	}

	v, err := compileRules(q.Rules)
	if err != nil {
		return fmt.Errorf("catalog: %s/%s: %w", deptID, q.ID, err)
	}
	q.validator = v
	return nil
}

// Department returns the department with the given id
func (c *Catalog) Department(id string) (*Department, error) {
	d, ok := c.departments[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDepartment, id)
	}
	return d, nil
}

// Departments returns all departments in catalog order
func (c *Catalog) Departments() []*Department {
	return c.order
}

// Languages returns the declared languages
func (c *Catalog) Languages() []string {
	return c.languages
}

// SupportsLanguage reports whether lang is declared
func (c *Catalog) SupportsLanguage(lang string) bool {
	for _, l := range c.languages {
		if l == lang {
			return true
		}
	}
	return false
}

// ResolveLanguage maps "" to the default language and rejects undeclared ones
func (c *Catalog) ResolveLanguage(lang string) (string, error) {
	if lang == "" {
		return c.defaultLanguage, nil
	}
	if !c.SupportsLanguage(lang) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}
	return lang, nil
}

// Localize returns the display text for q in lang
func (c *Catalog) Localize(q *Question, lang string) LocalizedQuestion {
	if text, ok := c.texts[q.TextKey][lang]; ok {
		return text
	}
	return c.texts[q.TextKey][c.defaultLanguage]
}

// Message returns a localized message, falling back to the default language
func (c *Catalog) Message(key, lang string) string {
	if m := c.messages[key][lang]; m != "" {
		return m
	}
	return c.messages[key][c.defaultLanguage]
}
