package rag

// RetrievedInformation is the deduplicated evidence set for a query.
// The three slices are parallel.
type RetrievedInformation struct {
	IDs       []string
	Documents []string
	Metadatas []map[string]any
}

// QueryResult is everything the generation step needs: the query
// variants used for retrieval, the evidence, and the assembled prompts.
type QueryResult struct {
	RewrittenQueries []string
	RetrievedInfo    RetrievedInformation
	UserPrompt       string
	SystemPrompt     string
}
