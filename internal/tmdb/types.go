package tmdb

import (
	"fmt"
	"strings"
)

// MediaKind selects which TMDB collection an operation targets.
type MediaKind string

const (
	KindMulti MediaKind = "multi"
	KindMovie MediaKind = "movie"
	KindTV    MediaKind = "tv"
)

// ParseMediaKind resolves a kind name. An empty name means multi.
func ParseMediaKind(value string) (MediaKind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "multi", "all":
		return KindMulti, nil
	case "movie", "movies", "film":
		return KindMovie, nil
	case "tv", "show", "series":
		return KindTV, nil
	default:
		return "", fmt.Errorf("unknown media kind %q (want movie, tv or multi)", value)
	}
}

func (k MediaKind) String() string { return string(k) }

// Concrete reports whether k names a single collection (movie or tv).
func (k MediaKind) Concrete() bool {
	return k == KindMovie || k == KindTV
}

// Result represents a single TMDB search match.
type Result struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title,omitempty"`
	Name             string  `json:"name,omitempty"`
	OriginalTitle    string  `json:"original_title,omitempty"`
	OriginalName     string  `json:"original_name,omitempty"`
	OriginalLanguage string  `json:"original_language,omitempty"`
	Overview         string  `json:"overview,omitempty"`
	ReleaseDate      string  `json:"release_date,omitempty"`
	FirstAirDate     string  `json:"first_air_date,omitempty"`
	MediaType        string  `json:"media_type,omitempty"`
	PosterPath       string  `json:"poster_path,omitempty"`
	BackdropPath     string  `json:"backdrop_path,omitempty"`
	GenreIDs         []int64 `json:"genre_ids,omitempty"`
	Adult            bool    `json:"adult,omitempty"`
	Popularity       float64 `json:"popularity"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int64   `json:"vote_count"`
}

// DisplayTitle returns the localized title, whichever field TMDB filled.
func (r Result) DisplayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Name
}

// DisplayOriginalTitle returns the title in the original language.
func (r Result) DisplayOriginalTitle() string {
	if r.OriginalTitle != "" {
		return r.OriginalTitle
	}
	return r.OriginalName
}

// Year returns the release or first-air year, or "" when unknown.
func (r Result) Year() string {
	date := r.ReleaseDate
	if date == "" {
		date = r.FirstAirDate
	}
	if len(date) < 4 {
		return ""
	}
	return date[:4]
}

// Response models the TMDB paginated search response.
type Response struct {
	Page         int      `json:"page"`
	Results      []Result `json:"results"`
	TotalPages   int      `json:"total_pages"`
	TotalResults int      `json:"total_results"`
}

// Genre is a TMDB genre.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// GenreList is the /genre/{kind}/list payload.
type GenreList struct {
	Genres []Genre `json:"genres"`
}

// Image describes one backdrop, poster or logo.
type Image struct {
	FilePath    string  `json:"file_path"`
	AspectRatio float64 `json:"aspect_ratio"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Language    string  `json:"iso_639_1,omitempty"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int64   `json:"vote_count"`
}

// ImagesResponse is the /{kind}/{id}/images payload.
type ImagesResponse struct {
	ID        int64   `json:"id"`
	Backdrops []Image `json:"backdrops"`
	Posters   []Image `json:"posters,omitempty"`
	Logos     []Image `json:"logos,omitempty"`
}

// CastMember is one credited actor.
type CastMember struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Character string `json:"character,omitempty"`
	Order     int    `json:"order"`
}

// CrewMember is one credited crew role.
type CrewMember struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Job        string `json:"job,omitempty"`
	Department string `json:"department,omitempty"`
}

// Credits groups cast and crew.
type Credits struct {
	Cast []CastMember `json:"cast,omitempty"`
	Crew []CrewMember `json:"crew,omitempty"`
}

// Video is a trailer or clip hosted on an external site.
type Video struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}

// VideoList wraps appended videos.
type VideoList struct {
	Results []Video `json:"results"`
}

// Details is a full movie or TV record with credits, images, videos and
// recommendations appended.
type Details struct {
	Result

	Genres           []Genre         `json:"genres,omitempty"`
	Runtime          int             `json:"runtime,omitempty"`
	EpisodeRunTime   []int           `json:"episode_run_time,omitempty"`
	NumberOfSeasons  int             `json:"number_of_seasons,omitempty"`
	NumberOfEpisodes int             `json:"number_of_episodes,omitempty"`
	Status           string          `json:"status,omitempty"`
	Tagline          string          `json:"tagline,omitempty"`
	Homepage         string          `json:"homepage,omitempty"`
	IMDbID           string          `json:"imdb_id,omitempty"`
	Credits          *Credits        `json:"credits,omitempty"`
	Images           *ImagesResponse `json:"images,omitempty"`
	Videos           *VideoList      `json:"videos,omitempty"`
	Recommendations  *Response       `json:"recommendations,omitempty"`
}

// RuntimeMinutes returns the movie runtime or the first TV episode runtime.
func (d Details) RuntimeMinutes() int {
	if d.Runtime > 0 {
		return d.Runtime
	}
	if len(d.EpisodeRunTime) > 0 {
		return d.EpisodeRunTime[0]
	}
	return 0
}
