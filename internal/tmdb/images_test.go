package tmdb_test

import (
	"testing"

	"filmtrack/internal/tmdb"
)

func TestImageURL(t *testing.T) {
	tests := []struct {
		base, size, path, want string
	}{
		{"https://image.tmdb.org/t/p/", "w780", "/abc.jpg", "https://image.tmdb.org/t/p/w780/abc.jpg"},
		{"https://image.tmdb.org/t/p", "", "abc.jpg", "https://image.tmdb.org/t/p/w500/abc.jpg"},
		{"https://image.tmdb.org/t/p", "original", "", ""},
	}
	for _, tt := range tests {
		if got := tmdb.ImageURL(tt.base, tt.size, tt.path); got != tt.want {
			t.Errorf("ImageURL(%q, %q, %q) = %q, want %q", tt.base, tt.size, tt.path, got, tt.want)
		}
	}
}

func TestRankImages(t *testing.T) {
	images := []tmdb.Image{
		{FilePath: "/low-votes.jpg", VoteCount: 1, VoteAverage: 9, Width: 3840, Height: 2160},
		{FilePath: "/small.jpg", VoteCount: 5, VoteAverage: 5.5, Width: 1280, Height: 720},
		{FilePath: "/large.jpg", VoteCount: 5, VoteAverage: 5.5, Width: 1920, Height: 1080},
		{FilePath: "/best-average.jpg", VoteCount: 5, VoteAverage: 6, Width: 640, Height: 360},
	}
	ranked := tmdb.RankImages(images, 3)
	want := []string{"/best-average.jpg", "/large.jpg", "/small.jpg"}
	if len(ranked) != len(want) {
		t.Fatalf("expected %d images, got %d", len(want), len(ranked))
	}
	for i, path := range want {
		if ranked[i].FilePath != path {
			t.Fatalf("rank %d = %s, want %s", i, ranked[i].FilePath, path)
		}
	}
	if images[0].FilePath != "/low-votes.jpg" {
		t.Fatal("RankImages must not reorder its input")
	}
	if got := tmdb.RankImages(images, 0); len(got) != 4 {
		t.Fatalf("expected no truncation without a limit, got %d", len(got))
	}
}
