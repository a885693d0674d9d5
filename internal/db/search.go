package db

// TagFilter restricts a search to documents whose TAG field equals Value.
type TagFilter struct {
	Field string
	Value string
}

// KNNQuery is a vector similarity search. Tags pre-filter the candidates,
// so K counts only matching documents.
type KNNQuery struct {
	IndexName    string
	Tags         []TagFilter
	Vector       []float32
	K            int
	ReturnFields []string
}

// FilterQuery lists the keys of documents matching all Tags, without
// loading their fields. Entries of the result carry only Key.
type FilterQuery struct {
	IndexName string
	Tags      []TagFilter
	Offset    int
	Limit     int
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit. Score is a cosine similarity in
// [0,1] for KNN queries and zero otherwise.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
