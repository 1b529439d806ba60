// Package jsdoc builds a Swagger 2.0 document from "@swagger" annotation
// blocks found in source files.
//
// An annotation block is a comment whose body starts with a line holding
// only the tag "@swagger" (or "@openapi"); the lines that follow are YAML,
// up to the end of the comment or the next line starting with "@":
//
//	/**
//	 * @swagger
//	 * /pets/{id}:
//	 *   get:
//	 *     description: Get a pet
//	 *     responses:
//	 *       200:
//	 *         description: ok
//	 */
//
// Block comments ("/* */", "/** */") and runs of line comments ("//") are
// recognized. Top-level keys "definitions", "parameters", "responses",
// "securityDefinitions" and "tags" merge into the matching document section;
// every other key is an API path. Files ending in .yaml, .yml or .json are
// read whole, in the same shape or as a full document with a "paths" key.
package jsdoc

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vitalvas/swaggerpage/swagger"
	"gopkg.in/yaml.v3"
)

// ErrBadPattern is returned when an API glob pattern is malformed.
var ErrBadPattern = errors.New("jsdoc: malformed glob pattern")

// documentKeys are top-level keys of a full document that carry
// definition-level data supplied by the caller, not by annotations.
var documentKeys = map[string]bool{
	"swagger":      true,
	"openapi":      true,
	"info":         true,
	"host":         true,
	"basePath":     true,
	"schemes":      true,
	"consumes":     true,
	"produces":     true,
	"security":     true,
	"externalDocs": true,
}

// ParseError reports an annotation block or spec file that is not valid YAML.
type ParseError struct {
	File  string
	Line  int
	Cause error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("jsdoc: %s:%d: %v", e.File, e.Line, e.Cause)
	}
	return fmt.Sprintf("jsdoc: %s: %v", e.File, e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// Extractor scans files matched by glob patterns for annotation blocks.
// The zero value is not usable; create one with New.
type Extractor struct {
	readFile func(string) ([]byte, error)
	glob     func(string) ([]string, error)
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithReadFile replaces the function used to read matched files.
func WithReadFile(fn func(string) ([]byte, error)) Option {
	return func(e *Extractor) {
		if fn != nil {
			e.readFile = fn
		}
	}
}

// WithGlob replaces the function used to expand API patterns.
func WithGlob(fn func(string) ([]string, error)) Option {
	return func(e *Extractor) {
		if fn != nil {
			e.glob = fn
		}
	}
}

// New returns an Extractor reading from the local filesystem.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		readFile: os.ReadFile,
		glob:     filepath.Glob,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Extract returns a new document built from def and every annotation block
// found in the files matched by apis. Files matched by several patterns are
// read once, in first-match order.
func (e *Extractor) Extract(def swagger.Definition, apis []string) (*swagger.Document, error) {
	doc := swagger.NewDocument(def)

	files, err := e.expand(apis)
	if err != nil {
		return nil, err
	}

	for _, file := range files {
		data, err := e.readFile(file)
		if err != nil {
			return nil, fmt.Errorf("jsdoc: read %s: %w", file, err)
		}

		if isSpecFile(file) {
			var node any
			if err := yaml.Unmarshal(data, &node); err != nil {
				return nil, &ParseError{File: file, Cause: err}
			}
			if err := merge(doc, normalize(node)); err != nil {
				return nil, fmt.Errorf("jsdoc: %s: %w", file, err)
			}
			continue
		}

		for _, blk := range annotations(string(data)) {
			var node any
			if err := yaml.Unmarshal([]byte(blk.body), &node); err != nil {
				return nil, &ParseError{File: file, Line: blk.line, Cause: err}
			}
			if err := merge(doc, normalize(node)); err != nil {
				return nil, fmt.Errorf("jsdoc: %s:%d: %w", file, blk.line, err)
			}
		}
	}

	return doc, nil
}

func (e *Extractor) expand(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, pattern := range patterns {
		matches, err := e.glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrBadPattern, pattern)
		}
		for _, m := range matches {
			if seen[m] {
				continue
			}
			seen[m] = true
			files = append(files, m)
		}
	}

	return files, nil
}

func isSpecFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// merge folds one decoded annotation into doc.
func merge(doc *swagger.Document, node any) error {
	if node == nil {
		return nil
	}

	m, ok := node.(map[string]any)
	if !ok {
		return fmt.Errorf("annotation must be a mapping, got %T", node)
	}

	for key, value := range m {
		switch {
		case key == "paths":
			paths, ok := value.(map[string]any)
			if !ok {
				return fmt.Errorf("paths must be a mapping, got %T", value)
			}
			for p, item := range paths {
				mergePath(doc.Paths, p, item)
			}
		case key == "definitions":
			if err := mergeSection(doc.Definitions, key, value); err != nil {
				return err
			}
		case key == "parameters":
			if err := mergeSection(doc.Parameters, key, value); err != nil {
				return err
			}
		case key == "responses":
			if err := mergeSection(doc.Responses, key, value); err != nil {
				return err
			}
		case key == "securityDefinitions":
			defs := make(map[string]*swagger.SecurityDefinition)
			if err := convert(value, &defs); err != nil {
				return fmt.Errorf("securityDefinitions: %w", err)
			}
			if doc.SecurityDefinitions == nil {
				doc.SecurityDefinitions = make(map[string]*swagger.SecurityDefinition, len(defs))
			}
			for name, def := range defs {
				doc.SecurityDefinitions[name] = def
			}
		case key == "tags":
			var tags []swagger.Tag
			if err := convert(value, &tags); err != nil {
				return fmt.Errorf("tags: %w", err)
			}
			doc.Tags = appendTags(doc.Tags, tags)
		case documentKeys[key]:
			continue
		default:
			mergePath(doc.Paths, key, value)
		}
	}

	return nil
}

func mergeSection(dst map[string]any, name string, value any) error {
	src, ok := value.(map[string]any)
	if !ok {
		return fmt.Errorf("%s must be a mapping, got %T", name, value)
	}
	for k, v := range src {
		dst[k] = v
	}
	return nil
}

// mergePath adds the operations of item to paths[path]. Operations declared
// for the same path in different blocks are combined; a later block wins for
// the same method.
func mergePath(paths map[string]any, path string, item any) {
	existing, ok := paths[path].(map[string]any)
	incoming, isMap := item.(map[string]any)
	if !ok || !isMap {
		paths[path] = item
		return
	}

	combined := make(map[string]any, len(existing)+len(incoming))
	for k, v := range existing {
		combined[k] = v
	}
	for k, v := range incoming {
		combined[k] = v
	}
	paths[path] = combined
}

func appendTags(tags, more []swagger.Tag) []swagger.Tag {
	for _, tag := range more {
		dup := false
		for _, t := range tags {
			if t.Name == tag.Name {
				dup = true
				break
			}
		}
		if !dup {
			tags = append(tags, tag)
		}
	}
	return tags
}

// convert maps a decoded value onto a typed destination through JSON.
func convert(value, dst any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

// normalize rewrites YAML mappings with non-string keys (such as response
// codes written as 200:) into map[string]any so the value encodes as JSON.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, item := range t {
			t[k] = normalize(item)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, item := range t {
			m[fmt.Sprint(k)] = normalize(item)
		}
		return m
	case []any:
		for i, item := range t {
			t[i] = normalize(item)
		}
		return t
	default:
		return v
	}
}
