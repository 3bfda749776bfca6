package schema

// Builders for JSON Schema fragments. Extraction backends return null for
// anything they cannot find, so every leaf is nullable unless required.

func object(props map[string]any, required ...string) map[string]any {
	m := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		m["required"] = required
	}
	return m
}

func nullableObject(props map[string]any) map[string]any {
	return map[string]any{
		"type":       []any{"object", "null"},
		"properties": props,
	}
}

func text() map[string]any { return map[string]any{"type": []any{"string", "null"}} }

func requiredText() map[string]any { return map[string]any{"type": "string"} }

func number() map[string]any { return map[string]any{"type": []any{"number", "null"}} }

func flag() map[string]any { return map[string]any{"type": []any{"boolean", "null"}} }

func confidence() map[string]any {
	return map[string]any{"type": []any{"number", "null"}}
}

func list(items map[string]any) map[string]any {
	return map[string]any{"type": []any{"array", "null"}, "items": items}
}

func texts() map[string]any { return list(text()) }

func anyObject() map[string]any {
	return map[string]any{"type": []any{"object", "null"}}
}
