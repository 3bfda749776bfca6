package extract

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/ombuds/enrichment-engine/internal/model"
	"github.com/ombuds/enrichment-engine/internal/schema"
)

// cleanJSON strips markdown fences and any prose around the outermost object.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if rest, ok := strings.CutPrefix(text, "```"); ok {
		rest = strings.TrimPrefix(rest, "json")
		if idx := strings.LastIndex(rest, "```"); idx >= 0 {
			rest = rest[:idx]
		}
		text = rest
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

// parseResponse decodes body, validates it against s and drops undeclared
// top-level fields. Confidence is clamped to [0,1].
func parseResponse(s *schema.Schema, body string) (model.Raw, error) {
	if strings.TrimSpace(body) == "" {
		return nil, eris.Wrapf(ErrEmptyResponse, "schema %s", s.ID)
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(cleanJSON(body)), &doc); err != nil {
		return nil, eris.Wrapf(ErrMalformedResponse, "schema %s: %v", s.ID, err)
	}
	if doc == nil {
		return nil, eris.Wrapf(ErrMalformedResponse, "schema %s: not an object", s.ID)
	}
	if err := s.Validate(doc); err != nil {
		return nil, eris.Wrapf(ErrMalformedResponse, "%v", err)
	}

	raw := s.Prune(model.Raw(doc))
	if c, ok := raw.ConfidenceOK(); ok {
		raw["confidence"] = c
	}
	return raw, nil
}
