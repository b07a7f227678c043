package extract

import "testing"

func TestParseRating(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
	}{
		{name: "three and a half", input: "★★★½", expected: 3.5},
		{name: "empty", input: "", expected: 0},
		{name: "five stars", input: "★★★★★", expected: 5},
		{name: "half only", input: "½", expected: 0.5},
		{name: "surrounding whitespace", input: "  ★★ ", expected: 2},
		{name: "no glyphs", input: "liked", expected: 0},
		{name: "clamped above five", input: "★★★★★★", expected: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseRating(tt.input); got != tt.expected {
				t.Errorf("ParseRating(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseTitleYear(t *testing.T) {
	tests := []struct {
		input string
		name  string
		year  string
	}{
		{input: "Arrival (2016)", name: "Arrival", year: "2016"},
		{input: "Arrival", name: "Arrival", year: ""},
		{input: "  Heat   (1995)  ", name: "Heat", year: "1995"},
		{input: "Blade Runner 2049 (2017)", name: "Blade Runner 2049", year: "2017"},
		{input: "M*A*S*H (TV) (1970)", name: "M*A*S*H (TV)", year: "1970"},
		{input: "1917", name: "1917", year: ""},
		{input: "(2016)", name: "(2016)", year: ""},
		{input: "Title (16)", name: "Title (16)", year: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			name, year := ParseTitleYear(tt.input)
			if name != tt.name || year != tt.year {
				t.Errorf("ParseTitleYear(%q) = (%q, %q), want (%q, %q)",
					tt.input, name, year, tt.name, tt.year)
			}
		})
	}
}

func TestParseCount(t *testing.T) {
	tests := map[string]int{
		"1,204":       1204,
		"42":          42,
		" 7 ":         7,
		"":            0,
		"n/a":         0,
		"12 345":      12345,
		"12\u00a0345": 12345,
		"1.204":       1204,
		"1.2K":        0,
		"-7":          0,
		"n/a 3":       0,
		"12 films":    0,
	}
	for input, want := range tests {
		if got := ParseCount(input); got != want {
			t.Errorf("ParseCount(%q) = %d, want %d", input, got, want)
		}
	}
}

func TestLargestAvatar(t *testing.T) {
	in := "https://a.ltrbxd.com/resized/avatar/upload/1/2/3/avtar-0-220-0-220-crop.jpg?v=abc"
	want := "https://a.ltrbxd.com/resized/avatar/upload/1/2/3/avtar-0-1000-0-1000-crop.jpg?v=abc"
	if got := LargestAvatar(in); got != want {
		t.Errorf("LargestAvatar() = %q, want %q", got, want)
	}

	plain := "https://s.ltrbxd.com/static/img/avatar220.png"
	if got := LargestAvatar(plain); got != plain {
		t.Errorf("LargestAvatar() rewrote a non-crop url: %q", got)
	}
}

func TestAbsoluteURL(t *testing.T) {
	tests := []struct {
		base, link, want string
	}{
		{"https://letterboxd.com", "/film/arrival-2016/", "https://letterboxd.com/film/arrival-2016/"},
		{"https://letterboxd.com/", "/film/arrival-2016/", "https://letterboxd.com/film/arrival-2016/"},
		{"https://letterboxd.com", "film/heat/", "https://letterboxd.com/film/heat/"},
		{"https://letterboxd.com", "https://other.example/film/x/", "https://other.example/film/x/"},
	}
	for _, tt := range tests {
		if got := AbsoluteURL(tt.base, tt.link); got != tt.want {
			t.Errorf("AbsoluteURL(%q, %q) = %q, want %q", tt.base, tt.link, got, tt.want)
		}
	}
}

func TestFilmSlug(t *testing.T) {
	tests := map[string]string{
		"/film/arrival-2016/":           "arrival-2016",
		"/alice/film/heat/":             "heat",
		"https://letterboxd.com/film/x/": "x",
		"/something/else/":              "else",
		"":                              "",
	}
	for input, want := range tests {
		if got := FilmSlug(input); got != want {
			t.Errorf("FilmSlug(%q) = %q, want %q", input, got, want)
		}
	}
}
