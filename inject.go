package swaggerpage

import (
	"fmt"
	"strings"
)

// The swagger-ui-dist entry page ships with a petstore document URL and a
// config object ending in the layout line. Both literals are coupled to the
// bundle's formatting; a bundle upgrade that reformats them only needs these
// constants updated.
const (
	specURLPlaceholder = `url: "https://petstore.swagger.io/v2/swagger.json"`
	configAnchor       = `layout: "StandaloneLayout"`
	configIndent       = "        "
)

// configPages are the bundle files that carry the viewer config.
var configPages = map[string]bool{
	"index.html":             true,
	"swagger-initializer.js": true,
}

// rewriteSpecURL replaces the first placeholder document URL with specURL.
func rewriteSpecURL(content, specURL string) string {
	return strings.Replace(content, specURLPlaceholder, `url: "`+specURL+`"`, 1)
}

// injectConfig appends lines after the first config anchor, each on its own
// line with the bundle's indentation.
func injectConfig(content string, lines []string) string {
	if len(lines) == 0 {
		return content
	}

	var b strings.Builder
	b.WriteString(configAnchor)
	for _, line := range lines {
		b.WriteString(",\n")
		b.WriteString(configIndent)
		b.WriteString(line)
	}

	return strings.Replace(content, configAnchor, b.String(), 1)
}

// configLines renders the viewer settings to inject, validatorUrl first.
func configLines(validator *ValidatorURL, methods []SubmitMethod) ([]string, error) {
	var lines []string

	if validator != nil {
		v, err := encodeJSON(validator)
		if err != nil {
			return nil, fmt.Errorf("encode validatorUrl: %w", err)
		}
		lines = append(lines, "validatorUrl: "+string(v))
	}

	if methods != nil {
		v, err := encodeJSON(methods)
		if err != nil {
			return nil, fmt.Errorf("encode supportedSubmitMethods: %w", err)
		}
		lines = append(lines, "supportedSubmitMethods: "+string(v))
	}

	return lines, nil
}
