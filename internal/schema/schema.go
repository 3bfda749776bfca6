// Package schema holds the extraction schemas: for each document or message
// variant, the instruction template sent to the extraction backend and the
// JSON Schema its response must satisfy.
package schema

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/ombuds/enrichment-engine/internal/model"
)

// TextSeparator ends every instruction block; the analysed text follows it.
const TextSeparator = "\n\n---\n\nTEXTO PARA ANÁLISE:\n\n"

// Schema is an immutable extraction schema.
type Schema struct {
	// ID names the schema in logs and errors.
	ID string
	// Task is the variant-specific instruction text.
	Task string
	// Shape is the example JSON shown to the backend.
	Shape string
	// Definition is the JSON Schema (draft 2020-12) for validating responses.
	Definition map[string]any

	once         sync.Once
	instructions string
	compiled     *jsonschema.Schema
	compileErr   error
}

// Instructions returns the full instruction block: shared rules, the task,
// the expected shape and the separator preceding the text.
func (s *Schema) Instructions() string {
	s.init()
	return s.instructions
}

// Validate checks a decoded JSON document against the schema definition.
func (s *Schema) Validate(doc map[string]any) error {
	s.init()
	if s.compileErr != nil {
		return s.compileErr
	}
	if err := s.compiled.Validate(doc); err != nil {
		return eris.Wrapf(err, "schema %s: response does not match", s.ID)
	}
	return nil
}

// Fields returns the declared top-level property names, sorted.
func (s *Schema) Fields() []string {
	props, _ := s.Definition["properties"].(map[string]any)
	out := make([]string, 0, len(props))
	for k := range props {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Prune returns a copy of raw without top-level fields the schema does not
// declare.
func (s *Schema) Prune(raw model.Raw) model.Raw {
	props, _ := s.Definition["properties"].(map[string]any)
	out := make(model.Raw, len(raw))
	for k, v := range raw {
		if _, ok := props[k]; ok {
			out[k] = v
		}
	}
	return out
}

func (s *Schema) init() {
	s.once.Do(func() {
		var b strings.Builder
		b.WriteString(baseInstructions)
		b.WriteString("\n\n")
		b.WriteString(strings.TrimSpace(s.Task))
		if s.Shape != "" {
			b.WriteString("\n\nFORMATO DE RESPOSTA (JSON estrito):\n```json\n")
			b.WriteString(strings.TrimSpace(s.Shape))
			b.WriteString("\n```")
		}
		b.WriteString(TextSeparator)
		s.instructions = b.String()

		s.compiled, s.compileErr = compile(s.ID, s.Definition)
	})
}

func compile(id string, def map[string]any) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(def)
	if err != nil {
		return nil, eris.Wrapf(err, "schema %s: marshal definition", id)
	}
	url := id + ".json"
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(url, bytes.NewReader(raw)); err != nil {
		return nil, eris.Wrapf(err, "schema %s: add resource", id)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, eris.Wrapf(err, "schema %s: compile", id)
	}
	return compiled, nil
}

// Check compiles every schema in All and reports the first failure.
func Check() error {
	for _, s := range All {
		s.init()
		if s.compileErr != nil {
			return s.compileErr
		}
	}
	return nil
}
