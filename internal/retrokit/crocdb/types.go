package crocdb

// envelope is the common response shape of the catalog API.
type envelope[T any] struct {
	Info map[string]any `json:"info"`
	Data T              `json:"data"`
}

// Link is one downloadable file of an entry.
type Link struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Format    string `json:"format"`
	URL       string `json:"url"`
	Filename  string `json:"filename"`
	Host      string `json:"host"`
	Size      int64  `json:"size"`
	SizeStr   string `json:"size_str"`
	SourceURL string `json:"source_url"`
}

// Entry is a catalog game record.
type Entry struct {
	Slug      string   `json:"slug"`
	RomID     string   `json:"rom_id,omitempty"`
	Title     string   `json:"title"`
	Platform  string   `json:"platform"`
	BoxartURL string   `json:"boxart_url,omitempty"`
	Regions   []string `json:"regions"`
	Links     []Link   `json:"links"`
}

// FirstLink returns the first download link of the entry.
func (e Entry) FirstLink() (Link, bool) {
	if len(e.Links) == 0 {
		return Link{}, false
	}
	return e.Links[0], true
}

type entryData struct {
	Entry Entry `json:"entry"`
}

// SearchRequest filters a catalog search. Zero fields are omitted.
type SearchRequest struct {
	SearchKey  string   `json:"search_key,omitempty"`
	Platforms  []string `json:"platforms,omitempty"`
	Regions    []string `json:"regions,omitempty"`
	RomID      string   `json:"rom_id,omitempty"`
	MaxResults int      `json:"max_results,omitempty"`
	Page       int      `json:"page,omitempty"`
}

// SearchResults is one page of search hits.
type SearchResults struct {
	Results        []Entry `json:"results"`
	CurrentResults int     `json:"current_results"`
	TotalResults   int     `json:"total_results"`
	CurrentPage    int     `json:"current_page"`
	TotalPages     int     `json:"total_pages"`
}

// Platform describes a catalog platform.
type Platform struct {
	Brand string `json:"brand"`
	Name  string `json:"name"`
}

type platformsData struct {
	Platforms map[string]Platform `json:"platforms"`
}

type regionsData struct {
	Regions map[string]string `json:"regions"`
}

// DatabaseInfo holds catalog statistics.
type DatabaseInfo struct {
	TotalEntries int64 `json:"total_entries"`
}
