package jsdoc

import "strings"

var annotationTags = []string{"@swagger", "@openapi"}

// block is the YAML body of one annotation and the 1-based line its first
// YAML line sits on.
type block struct {
	line int
	body string
}

// annotations returns the annotation bodies found in the comments of src,
// in source order.
func annotations(src string) []block {
	var (
		out     []block
		inBlock bool
		comment []string // stripped comment lines
		start   int      // 1-based line of comment[0]
	)

	flush := func() {
		if len(comment) > 0 {
			out = append(out, tagged(comment, start)...)
		}
		comment = nil
	}

	for i, raw := range strings.Split(src, "\n") {
		line := strings.TrimRight(raw, "\r")

		if inBlock {
			if end := strings.Index(line, "*/"); end >= 0 {
				comment = append(comment, stripStar(line[:end]))
				inBlock = false
				flush()
				continue
			}
			comment = append(comment, stripStar(line))
			continue
		}

		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, "//") {
			if len(comment) == 0 {
				start = i + 1
			}
			rest := strings.TrimPrefix(trimmed[2:], " ")
			comment = append(comment, rest)
			continue
		}
		flush()

		idx := strings.Index(line, "/*")
		if idx < 0 {
			continue
		}
		rest := strings.TrimPrefix(line[idx+2:], "*")
		start = i + 1
		if end := strings.Index(rest, "*/"); end >= 0 {
			comment = append(comment, strings.TrimSpace(rest[:end]))
			flush()
			continue
		}
		comment = append(comment, strings.TrimPrefix(rest, " "))
		inBlock = true
	}

	// An unterminated block comment or a trailing run of line comments.
	flush()

	return out
}

// tagged splits one comment into annotation bodies. Each body starts after a
// tag line and runs until the next line beginning with "@" or the end of the
// comment.
func tagged(lines []string, start int) []block {
	var out []block

	for i := 0; i < len(lines); i++ {
		if !isTag(strings.TrimSpace(lines[i])) {
			continue
		}

		j := i + 1
		for j < len(lines) && !strings.HasPrefix(strings.TrimSpace(lines[j]), "@") {
			j++
		}

		body := dedent(lines[i+1 : j])
		if strings.TrimSpace(body) != "" {
			out = append(out, block{line: start + i + 1, body: body})
		}
		i = j - 1
	}

	return out
}

func isTag(s string) bool {
	for _, tag := range annotationTags {
		if s == tag {
			return true
		}
	}
	return false
}

// stripStar removes the leading " * " decoration of a block comment line,
// keeping the indentation that follows it.
func stripStar(line string) string {
	s := strings.TrimLeft(line, " \t")
	if !strings.HasPrefix(s, "*") {
		return line
	}
	return strings.TrimPrefix(s[1:], " ")
}

// dedent removes the common leading indentation of the non-blank lines and
// drops trailing blank lines.
func dedent(lines []string) string {
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}

	minIndent := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " \t"))
		if minIndent < 0 || n < minIndent {
			minIndent = n
		}
	}

	var b strings.Builder
	for _, l := range lines {
		switch {
		case strings.TrimSpace(l) == "":
			l = ""
		case minIndent > 0:
			l = l[minIndent:]
		}
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return b.String()
}
