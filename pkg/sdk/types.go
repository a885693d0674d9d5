package sdk

// SearchParams describes one documentation search.
type SearchParams struct {
	Library string
	// Version is an exact version, a range ("18.x", "~1.2", "^3") or
	// "latest". Empty means "latest" unless ExactMatch is set, in which
	// case it selects unversioned documentation.
	Version    string
	Query      string
	Limit      int // <= 0 uses the default of 5
	ExactMatch bool
}

// SearchResult is a single passage hit.
type SearchResult struct {
	ID      string
	Score   float64
	Content string
	URL     string
	Title   string
	Library string
	Version string
}

// SearchResponse is the shaped result of Client.Search.
// Error is set only when the requested version could not be found,
// in which case Results is empty.
type SearchResponse struct {
	Results []SearchResult
	Error   *VersionError
}

// VersionError explains a missing version.
type VersionError struct {
	Message           string
	AvailableVersions []Version
}

// Version is a known version of a library.
type Version struct {
	Version string // "" for unversioned documentation
	Indexed bool
}

// Passage is a chunk of documentation to index.
type Passage struct {
	ID      string
	Content string
	URL     string
	Title   string
}
