package tmdb

import (
	"strconv"
	"strings"

	"github.com/Digital-Shane/media-resolver/internal/media"
)

// Details is the closed set of detail payloads the catalog returns. Only
// *MovieDetails and *ShowDetails implement it.
type Details interface {
	details()
	MediaType() media.Type
}

// Genre is a catalog genre tag.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ExternalIDs holds cross-catalog identifiers appended to detail responses.
type ExternalIDs struct {
	IMDbID string `json:"imdb_id"`
	TVDBID int    `json:"tvdb_id"`
}

// MovieDetails is the /movie/{id} payload.
type MovieDetails struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	ReleaseDate  string  `json:"release_date"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	Overview     string  `json:"overview"`
	IMDbID       string  `json:"imdb_id"`
	Genres       []Genre `json:"genres"`
}

func (*MovieDetails) details() {}

// MediaType reports media.Movie.
func (*MovieDetails) MediaType() media.Type { return media.Movie }

// SeasonSummary is one entry of a show's season list.
type SeasonSummary struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	SeasonNumber int    `json:"season_number"`
	EpisodeCount int    `json:"episode_count"`
	AirDate      string `json:"air_date"`
	PosterPath   string `json:"poster_path"`
}

// ShowDetails is the /tv/{id} payload.
type ShowDetails struct {
	ID           int             `json:"id"`
	Name         string          `json:"name"`
	FirstAirDate string          `json:"first_air_date"`
	PosterPath   string          `json:"poster_path"`
	BackdropPath string          `json:"backdrop_path"`
	Overview     string          `json:"overview"`
	Seasons      []SeasonSummary `json:"seasons"`
	ExternalIDs  *ExternalIDs    `json:"external_ids,omitempty"`
	Genres       []Genre         `json:"genres"`
}

func (*ShowDetails) details() {}

// MediaType reports media.Series.
func (*ShowDetails) MediaType() media.Type { return media.Series }

// Season returns the summary with the given season id.
func (s *ShowDetails) Season(id string) (SeasonSummary, bool) {
	for _, season := range s.Seasons {
		if strconv.Itoa(season.ID) == id {
			return season, true
		}
	}
	return SeasonSummary{}, false
}

// SeasonByNumber returns the summary with the given season number.
func (s *ShowDetails) SeasonByNumber(number int) (SeasonSummary, bool) {
	for _, season := range s.Seasons {
		if season.SeasonNumber == number {
			return season, true
		}
	}
	return SeasonSummary{}, false
}

// Episode is one entry of a season's episode list.
type Episode struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	EpisodeNumber int    `json:"episode_number"`
	SeasonNumber  int    `json:"season_number"`
	AirDate       string `json:"air_date"`
	StillPath     string `json:"still_path"`
	Overview      string `json:"overview"`
}

// SeasonDetails is the /tv/{id}/season/{n} payload.
type SeasonDetails struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	SeasonNumber int       `json:"season_number"`
	AirDate      string    `json:"air_date"`
	Episodes     []Episode `json:"episodes"`
}

// EpisodeByNumber returns the episode with the given number.
func (s *SeasonDetails) EpisodeByNumber(number int) (Episode, bool) {
	for _, ep := range s.Episodes {
		if ep.EpisodeNumber == number {
			return ep, true
		}
	}
	return Episode{}, false
}

// SearchResult is one row of /search/multi. Movies fill Title and
// ReleaseDate, shows fill Name and FirstAirDate.
type SearchResult struct {
	ID           int    `json:"id"`
	MediaKind    string `json:"media_type"`
	Title        string `json:"title"`
	Name         string `json:"name"`
	ReleaseDate  string `json:"release_date"`
	FirstAirDate string `json:"first_air_date"`
	PosterPath   string `json:"poster_path"`
	BackdropPath string `json:"backdrop_path"`
	Overview     string `json:"overview"`
}

// Details converts the row into the matching detail payload. Rows that are
// neither movies nor shows, such as people, return ok false.
func (r SearchResult) Details() (Details, bool) {
	switch r.MediaKind {
	case media.ProviderMovie:
		return &MovieDetails{
			ID:           r.ID,
			Title:        r.Title,
			ReleaseDate:  r.ReleaseDate,
			PosterPath:   r.PosterPath,
			BackdropPath: r.BackdropPath,
			Overview:     r.Overview,
		}, true
	case media.ProviderTV:
		return &ShowDetails{
			ID:           r.ID,
			Name:         r.Name,
			FirstAirDate: r.FirstAirDate,
			PosterPath:   r.PosterPath,
			BackdropPath: r.BackdropPath,
			Overview:     r.Overview,
		}, true
	}
	return nil, false
}

// SearchResults is a page of /search/multi.
type SearchResults struct {
	Page         int            `json:"page"`
	Results      []SearchResult `json:"results"`
	TotalResults int            `json:"total_results"`
	TotalPages   int            `json:"total_pages"`
}

// FindResults is the /find/{external_id} payload.
type FindResults struct {
	MovieResults []SearchResult `json:"movie_results"`
	TVResults    []SearchResult `json:"tv_results"`
}

// ReleaseYear returns the calendar year of an ISO date, or "" when the date
// is missing or malformed.
func ReleaseYear(date string) string {
	year, _, _ := strings.Cut(date, "-")
	if len(year) != 4 {
		return ""
	}
	if _, err := strconv.Atoi(year); err != nil {
		return ""
	}
	return year
}
