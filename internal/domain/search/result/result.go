package result

// Result is a single documentation passage matched by a search.
type Result struct {
	id      string
	score   float64
	content string
	url     string
	title   string
	library string
	version string
}

// New creates a search result.
func New(id string, score float64, content, url, title, library, version string) Result {
	return Result{
		id: id, score: score, content: content, url: url,
		title: title, library: library, version: version,
	}
}

// ID returns the passage identifier.
func (r *Result) ID() string { return r.id }

// Score returns the similarity score in [0, 1].
func (r *Result) Score() float64 { return r.score }

// Content returns the passage text.
func (r *Result) Content() string { return r.content }

// URL returns the source page of the passage.
func (r *Result) URL() string { return r.url }

// Title returns the source page title.
func (r *Result) Title() string { return r.title }

// Library returns the library the passage belongs to.
func (r *Result) Library() string { return r.library }

// Version returns the indexed version, empty for unversioned docs.
func (r *Result) Version() string { return r.version }
