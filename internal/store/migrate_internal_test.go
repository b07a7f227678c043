package store

import "testing"

func TestMigrateURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"postgres://u:p@localhost:5432/boxd?sslmode=disable", "pgx5://u:p@localhost:5432/boxd?sslmode=disable"},
		{"postgresql://localhost/boxd", "pgx5://localhost/boxd"},
		{"pgx5://localhost/boxd", "pgx5://localhost/boxd"},
	}
	for _, tt := range tests {
		if got := migrateURL(tt.in); got != tt.want {
			t.Errorf("migrateURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
