package swaggerpage

import (
	"fmt"
	"strings"

	"github.com/vitalvas/swaggerpage/swagger"
)

// BuildSpec validates opts and returns the document CreatePage would serve.
// The extractor output is copied, never modified.
func BuildSpec(opts PageOptions) (*swagger.Document, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return buildSpec(opts.withDefaults())
}

func buildSpec(opts PageOptions) (*swagger.Document, error) {
	tags := opts.Tags
	if tags == nil {
		tags = []swagger.Tag{}
	}
	apis := opts.APIs
	if apis == nil {
		apis = []string{}
	}

	def := swagger.Definition{
		Info: swagger.Info{
			Title:       opts.Title,
			Version:     opts.Version,
			Description: opts.Description,
		},
		Host:     strings.TrimRight(opts.Host, "/"),
		BasePath: basePath(opts.RoutePrefix),
		Schemes:  opts.Schemes,
		Tags:     tags,
	}

	raw, err := opts.Extractor.Extract(def, apis)
	if err != nil {
		return nil, fmt.Errorf("extract spec: %w", err)
	}
	if raw == nil {
		raw = swagger.NewDocument(def)
	}

	doc := raw.Clone()

	for name, schema := range opts.Definitions {
		doc.Definitions[name] = schema
	}

	switch {
	case opts.SecurityDefinitions == nil:
	case len(opts.SecurityDefinitions) == 0:
		doc.SecurityDefinitions = nil
	default:
		if doc.SecurityDefinitions == nil {
			doc.SecurityDefinitions = make(map[string]*swagger.SecurityDefinition, len(opts.SecurityDefinitions))
		}
		for name, sd := range opts.SecurityDefinitions {
			doc.SecurityDefinitions[name] = sd
		}
	}

	return doc, nil
}

// basePath returns "/" followed by prefix without its leading slashes.
func basePath(prefix string) string {
	return "/" + strings.TrimLeft(prefix, "/")
}
