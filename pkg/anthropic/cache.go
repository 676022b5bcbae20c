package anthropic

// BuildCachedSystemBlocks constructs a system block with a 5-minute cache
// breakpoint. Extraction prompts repeat per context and strategy, so
// consecutive calls for the same context hit the warm cache.
func BuildCachedSystemBlocks(text string) []SystemBlock {
	return []SystemBlock{
		{
			Text: text,
			CacheControl: &CacheControl{
				TTL: "5m",
			},
		},
	}
}
