package hit

// Hit is a single search result as returned by the search provider.
type Hit struct {
	Title   string
	Link    string
	Snippet string
}
