package media

import "slices"

// Record is the normalized description of a movie or series, independent of
// which provider payload it was assembled from.
type Record struct {
	Title    string `json:"title"`
	ID       string `json:"id"` // primary catalog numeric id
	Type     Type   `json:"type"`
	Year     string `json:"year,omitempty"`
	Poster   string `json:"poster,omitempty"`
	Backdrop string `json:"backdrop,omitempty"`
	Overview string `json:"overview,omitempty"`
	IMDbID   string `json:"imdb_id,omitempty"`

	// Series only
	Seasons    []Season    `json:"seasons,omitempty"`
	SeasonData *SeasonData `json:"season,omitempty"`
	Episodes   []Episode   `json:"episodes,omitempty"`
}

// CanonicalID encodes the record's identity.
func (r Record) CanonicalID() (ID, error) {
	return EncodeID(r.Type, r.ID, r.Title)
}

// Clone returns a copy of r that shares no slices or pointers with it.
func (r Record) Clone() Record {
	r.Seasons = slices.Clone(r.Seasons)
	r.Episodes = slices.Clone(r.Episodes)
	if r.SeasonData != nil {
		sd := *r.SeasonData
		sd.Episodes = slices.Clone(sd.Episodes)
		r.SeasonData = &sd
	}
	return r
}

// Season is one entry of a series' season list.
type Season struct {
	ID     string `json:"id"`
	Number int    `json:"number"`
	Title  string `json:"title"`
}

// SeasonData is a single season with its episodes.
type SeasonData struct {
	ID       string    `json:"id"`
	Number   int       `json:"number"`
	Title    string    `json:"title"`
	Episodes []Episode `json:"episodes"`
}

// Episode carries the display fields of a single episode.
type Episode struct {
	ID        string `json:"id"`
	Season    int    `json:"season"`
	Number    int    `json:"number"`
	Title     string `json:"title"`
	AirDate   string `json:"air_date,omitempty"`
	StillPath string `json:"still_path,omitempty"`
	Overview  string `json:"overview,omitempty"`
}
