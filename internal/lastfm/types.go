package lastfm

// Tag is a Last.fm user tag with its popularity count.
type Tag struct {
	Name  string `json:"name"`
	Count int    `json:"count,omitempty"` // absent in artist.getTopTags
	URL   string `json:"url"`
}

// topTagsResponse is shared by track.getTopTags and artist.getTopTags.
type topTagsResponse struct {
	TopTags struct {
		Tag []Tag `json:"tag"`
	} `json:"toptags"`
}

type apiError struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
}
