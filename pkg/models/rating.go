package models

// UserRating is one entry of a user's rating history in the shape the
// ranking engine consumes.
type UserRating struct {
	ID         string  `json:"id" yaml:"id"`
	GenreIDs   []int   `json:"genre_ids" yaml:"genre_ids"`
	UserRating float64 `json:"user_rating" yaml:"user_rating"`
}

// ToUserRatings converts scraped records into ranking input. Unrated films
// (rating 0) carry no preference signal and are dropped. The listing carries
// no genre data, so GenreIDs is always empty and must be joined upstream.
func ToUserRatings(films []FilmRecord) []UserRating {
	out := make([]UserRating, 0, len(films))
	for _, f := range films {
		if f.Rating <= 0 || f.Slug == "" {
			continue
		}
		out = append(out, UserRating{
			ID:         f.Slug,
			GenreIDs:   []int{},
			UserRating: f.Rating,
		})
	}
	return out
}
