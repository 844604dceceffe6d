package lastfm

// Tag is one Last.fm tag with its popularity count. Counts are present
// on track.getTopTags responses and absent on artist.getTopTags.
type Tag struct {
	Name  string `json:"name"`
	Count int    `json:"count,omitempty"`
}

// topTagsResponse covers both track.getTopTags and artist.getTopTags;
// the attribute block differs between the two but is not used here.
type topTagsResponse struct {
	TopTags struct {
		Tag []Tag `json:"tag"`
	} `json:"toptags"`
}

// apiError is the error envelope Last.fm returns in place of a result.
type apiError struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
}
