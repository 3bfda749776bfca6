package anthropic

// BuildCachedSystemBlocks wraps instruction text in a single system block with
// an ephemeral cache breakpoint. Extraction instructions repeat verbatim
// across calls for the same schema, so consecutive calls read them from cache.
func BuildCachedSystemBlocks(text string) []SystemBlock {
	if text == "" {
		return nil
	}
	return []SystemBlock{
		{
			Text:         text,
			CacheControl: &CacheControl{TTL: "5m"},
		},
	}
}
