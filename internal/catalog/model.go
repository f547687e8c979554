package catalog

// Genre is a catalog genre reference.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CastMember is a single billed performer from the credits block.
type CastMember struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character,omitempty"`
	ProfilePath string `json:"profile_path,omitempty"`
	Order       int    `json:"order"`
}

// CrewMember is a single crew credit.
type CrewMember struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Job        string `json:"job,omitempty"`
	Department string `json:"department,omitempty"`
}

// Credits groups cast and crew returned with movie details.
type Credits struct {
	Cast []CastMember `json:"cast,omitempty"`
	Crew []CrewMember `json:"crew,omitempty"`
}

// Video is a trailer or clip reference.
type Video struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}

// VideoList wraps the videos block of movie details.
type VideoList struct {
	Results []Video `json:"results"`
}

// Movie is a catalog record. List endpoints fill GenreIDs while the details
// endpoint fills Genres, Runtime, Credits, Videos and Similar.
type Movie struct {
	ID            int        `json:"id"`
	Title         string     `json:"title"`
	OriginalTitle string     `json:"original_title,omitempty"`
	Overview      string     `json:"overview,omitempty"`
	Tagline       string     `json:"tagline,omitempty"`
	PosterPath    string     `json:"poster_path,omitempty"`
	BackdropPath  string     `json:"backdrop_path,omitempty"`
	ReleaseDate   string     `json:"release_date,omitempty"`
	VoteAverage   float64    `json:"vote_average"`
	VoteCount     int        `json:"vote_count"`
	Popularity    float64    `json:"popularity,omitempty"`
	Runtime       int        `json:"runtime,omitempty"`
	GenreIDs      []int      `json:"genre_ids,omitempty"`
	Genres        []Genre    `json:"genres,omitempty"`
	Credits       *Credits   `json:"credits,omitempty"`
	Videos        *VideoList `json:"videos,omitempty"`
	Similar       *MoviePage `json:"similar,omitempty"`
}

// GenreIDList returns the genre identifiers of the movie regardless of which
// endpoint produced the record.
func (m Movie) GenreIDList() []int {
	if len(m.GenreIDs) > 0 {
		return m.GenreIDs
	}
	if len(m.Genres) == 0 {
		return nil
	}
	ids := make([]int, 0, len(m.Genres))
	for _, genre := range m.Genres {
		ids = append(ids, genre.ID)
	}
	return ids
}

// Trailer returns the first YouTube trailer of the movie, if any.
func (m Movie) Trailer() (Video, bool) {
	if m.Videos == nil {
		return Video{}, false
	}
	for _, video := range m.Videos.Results {
		if video.Site == "YouTube" && video.Type == "Trailer" {
			return video, true
		}
	}
	return Video{}, false
}

// MoviePage is a single page of list results.
type MoviePage struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

type genreListResponse struct {
	Genres []Genre `json:"genres"`
}
