package docqa

import "strings"

// FormatContext joins the chunk texts of results, in order, separated by
// blank lines.
func FormatContext(results []SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, r.Chunk.Text)
	}

	return strings.Join(parts, "\n\n")
}
