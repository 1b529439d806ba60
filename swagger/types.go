package swagger

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"
)

// Version is the value of the top-level "swagger" field.
const Version = "2.0"

// Scheme is a transfer protocol of the API.
//
// See: https://swagger.io/specification/v2/#swagger-object
type Scheme string

const (
	SchemeHTTP  Scheme = "http"
	SchemeHTTPS Scheme = "https"
	SchemeWS    Scheme = "ws"
	SchemeWSS   Scheme = "wss"
)

// Valid reports whether s is one of the schemes allowed by Swagger 2.0.
func (s Scheme) Valid() bool {
	switch s {
	case SchemeHTTP, SchemeHTTPS, SchemeWS, SchemeWSS:
		return true
	}
	return false
}

// Document represents the root of a Swagger 2.0 document.
//
// Paths, Definitions, Parameters and Responses hold decoded JSON values.
// Schemes distinguishes nil (field omitted) from empty (serialized as []).
//
// See: https://swagger.io/specification/v2/#swagger-object
type Document struct {
	Swagger             string                         `json:"swagger" yaml:"swagger"`
	Info                Info                           `json:"info" yaml:"info"`
	Host                string                         `json:"host,omitempty" yaml:"host,omitempty"`
	BasePath            string                         `json:"basePath" yaml:"basePath"`
	Schemes             []Scheme                       `json:"schemes,omitzero" yaml:"schemes,omitempty"`
	Consumes            []string                       `json:"consumes,omitempty" yaml:"consumes,omitempty"`
	Produces            []string                       `json:"produces,omitempty" yaml:"produces,omitempty"`
	Tags                []Tag                          `json:"tags" yaml:"tags"`
	Paths               map[string]any                 `json:"paths" yaml:"paths"`
	Definitions         map[string]any                 `json:"definitions" yaml:"definitions"`
	Parameters          map[string]any                 `json:"parameters" yaml:"parameters"`
	Responses           map[string]any                 `json:"responses" yaml:"responses"`
	SecurityDefinitions map[string]*SecurityDefinition `json:"securityDefinitions,omitempty" yaml:"securityDefinitions,omitempty"`
	Security            []SecurityRequirement          `json:"security,omitempty" yaml:"security,omitempty"`
	ExternalDocs        *ExternalDocs                  `json:"externalDocs,omitempty" yaml:"externalDocs,omitempty"`
}

// Info provides metadata about the API.
//
// See: https://swagger.io/specification/v2/#info-object
type Info struct {
	Title          string   `json:"title" yaml:"title"`
	Version        string   `json:"version" yaml:"version"`
	Description    string   `json:"description,omitempty" yaml:"description,omitempty"`
	TermsOfService string   `json:"termsOfService,omitempty" yaml:"termsOfService,omitempty"`
	Contact        *Contact `json:"contact,omitempty" yaml:"contact,omitempty"`
	License        *License `json:"license,omitempty" yaml:"license,omitempty"`
}

// Contact represents contact information for the API.
type Contact struct {
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	URL   string `json:"url,omitempty" yaml:"url,omitempty"`
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
}

// License represents license information for the API.
type License struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Tag adds metadata to a tag used by operations.
//
// See: https://swagger.io/specification/v2/#tag-object
type Tag struct {
	Name         string        `json:"name" yaml:"name" mapstructure:"name"`
	Description  string        `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	ExternalDocs *ExternalDocs `json:"externalDocs,omitempty" yaml:"externalDocs,omitempty" mapstructure:"-"`
}

// ExternalDocs references external documentation.
type ExternalDocs struct {
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	URL         string `json:"url" yaml:"url"`
}

// SecurityRequirement maps security scheme names to required scopes.
type SecurityRequirement map[string][]string

// SecurityDefinition describes a security scheme usable by operations.
// Type is one of "basic", "apiKey" or "oauth2"; the remaining fields apply
// depending on the type and, for oauth2, the flow.
//
// See: https://swagger.io/specification/v2/#security-scheme-object
type SecurityDefinition struct {
	Type             string            `json:"type" yaml:"type" mapstructure:"type"`
	Description      string            `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Name             string            `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	In               string            `json:"in,omitempty" yaml:"in,omitempty" mapstructure:"in"`
	Flow             string            `json:"flow,omitempty" yaml:"flow,omitempty" mapstructure:"flow"`
	AuthorizationURL string            `json:"authorizationUrl,omitempty" yaml:"authorizationUrl,omitempty" mapstructure:"authorizationUrl"`
	TokenURL         string            `json:"tokenUrl,omitempty" yaml:"tokenUrl,omitempty" mapstructure:"tokenUrl"`
	Scopes           map[string]string `json:"scopes,omitempty" yaml:"scopes,omitempty" mapstructure:"scopes"`
}

// Definition carries the document-level fields handed to a spec extractor.
// The extractor fills in paths and reusable sections from its sources.
type Definition struct {
	Info     Info
	Host     string
	BasePath string
	Schemes  []Scheme
	Tags     []Tag
}

// NewDocument returns a document initialised from def with every section
// present and empty.
func NewDocument(def Definition) *Document {
	tags := def.Tags
	if tags == nil {
		tags = []Tag{}
	}
	return &Document{
		Swagger:     Version,
		Info:        def.Info,
		Host:        def.Host,
		BasePath:    def.BasePath,
		Schemes:     def.Schemes,
		Tags:        tags,
		Paths:       make(map[string]any),
		Definitions: make(map[string]any),
		Parameters:  make(map[string]any),
		Responses:   make(map[string]any),
	}
}

// Clone returns a copy of d whose top-level maps and slices can be modified
// without affecting d. Values inside the maps are shared.
func (d *Document) Clone() *Document {
	c := *d
	c.Schemes = slices.Clone(d.Schemes)
	c.Consumes = slices.Clone(d.Consumes)
	c.Produces = slices.Clone(d.Produces)
	c.Tags = slices.Clone(d.Tags)
	c.Paths = maps.Clone(d.Paths)
	c.Definitions = maps.Clone(d.Definitions)
	c.Parameters = maps.Clone(d.Parameters)
	c.Responses = maps.Clone(d.Responses)
	c.SecurityDefinitions = maps.Clone(d.SecurityDefinitions)
	c.Security = slices.Clone(d.Security)
	return c.withSections()
}

// withSections replaces nil required sections with empty ones.
func (d Document) withSections() *Document {
	if d.Swagger == "" {
		d.Swagger = Version
	}
	if d.Tags == nil {
		d.Tags = []Tag{}
	}
	if d.Paths == nil {
		d.Paths = make(map[string]any)
	}
	if d.Definitions == nil {
		d.Definitions = make(map[string]any)
	}
	if d.Parameters == nil {
		d.Parameters = make(map[string]any)
	}
	if d.Responses == nil {
		d.Responses = make(map[string]any)
	}
	return &d
}

// JSON serializes the document. Map keys are sorted, so equal documents
// always produce identical bytes.
func (d *Document) JSON() ([]byte, error) {
	data, err := json.Marshal(d.withSections())
	if err != nil {
		return nil, fmt.Errorf("swagger: encode json: %w", err)
	}
	return data, nil
}

// YAML serializes the document as YAML.
func (d *Document) YAML() ([]byte, error) {
	data, err := yaml.Marshal(d.withSections())
	if err != nil {
		return nil, fmt.Errorf("swagger: encode yaml: %w", err)
	}
	return data, nil
}
