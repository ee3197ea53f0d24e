package docqa

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms HTML content into Markdown.
	// Used for corpus pages saved as HTML rather than Markdown.
	Convert(html string) (string, error)
}
