package catalog

import (
	"fmt"
	"net/mail"
	"regexp"
	"strconv"
	"unicode/utf8"
)

// Validator is a predicate over a submitted answer
type Validator func(string) bool

// Rule names a validation predicate and its argument
type Rule struct {
	Type  string `yaml:"type"`
	Value string `yaml:"value"`
}

// Rule types
const (
	RulePattern   = "pattern"
	RuleMinLength = "minLength"
	RuleEmail     = "email"
)

// compileRules turns rules into one predicate that passes only when every
// rule passes. No rules yields a nil Validator.
func compileRules(rules []Rule) (Validator, error) {
	if len(rules) == 0 {
		return nil, nil
	}

	checks := make([]Validator, 0, len(rules))
	for _, r := range rules {
		v, err := compileRule(r)
		if err != nil {
			return nil, err
		}
		checks = append(checks, v)
	}

	return func(s string) bool {
		for _, check := range checks {
			if !check(s) {
				return false
			}
		}
		return true
	}, nil
}

func compileRule(r Rule) (Validator, error) {
	switch r.Type {
	case RulePattern:
		re, err := regexp.Compile(r.Value)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", r.Value, err)
		}
		return re.MatchString, nil

	case RuleMinLength:
		n, err := strconv.Atoi(r.Value)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("bad minLength %q", r.Value)
		}
		return func(s string) bool {
			return utf8.RuneCountInString(s) >= n
		}, nil

	case RuleEmail:
		return func(s string) bool {
			addr, err := mail.ParseAddress(s)
			return err == nil && addr.Address == s
		}, nil
	}
	return nil, fmt.Errorf("unknown rule %q", r.Type)
}
