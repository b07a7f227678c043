// Package models contains shared data models used across the boxdscrape codebase.
package models

// FilmRecord is one rated item scraped from a user's film listing.
type FilmRecord struct {
	Name   string  `json:"name" yaml:"name"`
	Year   string  `json:"year,omitempty" yaml:"year,omitempty"`
	URI    string  `json:"uri" yaml:"uri"`
	Slug   string  `json:"slug,omitempty" yaml:"slug,omitempty"`
	Rating float64 `json:"rating" yaml:"rating"`
}

// ProfileStats holds the counters shown on a public profile.
type ProfileStats struct {
	TotalFilms    int `json:"totalFilms" yaml:"totalFilms"`
	FilmsThisYear int `json:"filmsThisYear" yaml:"filmsThisYear"`
	Following     int `json:"following" yaml:"following"`
	Followers     int `json:"followers" yaml:"followers"`
}

// ProfileSummary is the public profile header of a user.
type ProfileSummary struct {
	DisplayName string       `json:"displayName" yaml:"displayName"`
	Username    string       `json:"username" yaml:"username"`
	AvatarURL   *string      `json:"avatarUrl" yaml:"avatarUrl,omitempty"`
	Location    *string      `json:"location" yaml:"location,omitempty"`
	Bio         *string      `json:"bio" yaml:"bio,omitempty"`
	Stats       ProfileStats `json:"stats" yaml:"stats"`
}

// Clone copies the summary along with its optional fields.
func (p ProfileSummary) Clone() ProfileSummary {
	out := p
	out.AvatarURL = cloneString(p.AvatarURL)
	out.Location = cloneString(p.Location)
	out.Bio = cloneString(p.Bio)
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
