// Package docqa answers natural language questions against named corpora of
// previously scraped documentation pages. Pages are split into overlapping
// chunks, embedded, and stored in one vector index per corpus; questions are
// answered by retrieving the closest chunks and conditioning a language model
// on them.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, bolt/, gemini/).
package docqa
