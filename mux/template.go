package mux

import (
	"fmt"
	"regexp"
	"strings"
)

const defaultVarPattern = "[^/]+"

// pathTemplate is a compiled path template.
type pathTemplate struct {
	template string
	regexp   *regexp.Regexp
	varsN    []string
	prefix   bool
}

// newPathTemplate parses tpl. Literal text is matched exactly; each {name}
// or {name:pattern} becomes one capture group. A prefix template matches any
// path that starts with it.
func newPathTemplate(tpl string, prefix bool) (*pathTemplate, error) {
	if !strings.HasPrefix(tpl, "/") {
		return nil, fmt.Errorf("%w: %q", ErrBadTemplate, tpl)
	}

	idxs, err := braceIndices(tpl)
	if err != nil {
		return nil, err
	}

	var (
		pattern strings.Builder
		varsN   []string
		end     int
	)

	pattern.WriteByte('^')

	for i := 0; i < len(idxs); i += 2 {
		raw := tpl[end:idxs[i]]
		end = idxs[i+1]

		name, patt, _ := strings.Cut(tpl[idxs[i]+1:end-1], ":")
		if name == "" {
			return nil, fmt.Errorf("%w: missing name in %q from %q", ErrBadTemplate, tpl[idxs[i]:end], tpl)
		}
		if patt == "" {
			patt = defaultVarPattern
		}

		varR, err := regexp.Compile(patt)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid pattern %q in variable %q: %w", ErrBadTemplate, patt, name, err)
		}
		if varR.NumSubexp() > 0 {
			return nil, fmt.Errorf("%w: capturing group in variable %q", ErrBadTemplate, name)
		}

		fmt.Fprintf(&pattern, "%s(%s)", regexp.QuoteMeta(raw), patt)
		varsN = append(varsN, name)
	}

	pattern.WriteString(regexp.QuoteMeta(tpl[end:]))
	if !prefix {
		pattern.WriteByte('$')
	}

	if err := checkDuplicateVars(varsN); err != nil {
		return nil, err
	}

	reg, err := regexp.Compile(pattern.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadTemplate, err)
	}

	return &pathTemplate{
		template: tpl,
		regexp:   reg,
		varsN:    varsN,
		prefix:   prefix,
	}, nil
}

func (t *pathTemplate) match(path string) bool {
	return t.regexp.MatchString(path)
}

// vars extracts the variables of path. It returns nil for templates without
// variables.
func (t *pathTemplate) vars(path string) map[string]string {
	if len(t.varsN) == 0 {
		return nil
	}
	matches := t.regexp.FindStringSubmatch(path)
	if matches == nil {
		return nil
	}
	vars := make(map[string]string, len(t.varsN))
	for i, name := range t.varsN {
		vars[name] = matches[i+1]
	}
	return vars
}

// braceIndices returns the start and end+1 indices of each top-level
// {...} pair in s. Returns an error if braces are unbalanced.
func braceIndices(s string) ([]int, error) {
	var (
		idxs  []int
		level int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			if level++; level == 1 {
				idxs = append(idxs, i)
			}
		case '}':
			if level--; level == 0 {
				idxs = append(idxs, i+1)
			} else if level < 0 {
				return nil, fmt.Errorf("%w: unbalanced braces in %q", ErrBadTemplate, s)
			}
		}
	}
	if level != 0 {
		return nil, fmt.Errorf("%w: unbalanced braces in %q", ErrBadTemplate, s)
	}
	return idxs, nil
}

func checkDuplicateVars(vars []string) error {
	seen := make(map[string]bool, len(vars))
	for _, v := range vars {
		if seen[v] {
			return fmt.Errorf("%w: duplicated route variable %q", ErrBadTemplate, v)
		}
		seen[v] = true
	}
	return nil
}
