package fetcher

import (
	"errors"
	"testing"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/domain"
)

func TestParseSearchDump_Playlist(t *testing.T) {
	raw := `{
		"id": "search-results",
		"entries": [
			{"id": "abc123", "url": "https://www.youtube.com/watch?v=abc123", "title": "First", "uploader": "Artist A", "duration": 215},
			{"id": "def456", "title": "Second", "channel": "Channel B", "duration": 90.5},
			{"id": "ghi789", "title": "Third"}
		]
	}`

	entries, err := parseSearchDump(raw, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}

	if entries[0].Artist != "Artist A" {
		t.Errorf("entry 0 artist = %q, want uploader", entries[0].Artist)
	}
	if entries[0].Duration != 215*time.Second {
		t.Errorf("entry 0 duration = %v", entries[0].Duration)
	}

	// No URL in the flat entry: reconstructed from the id
	if entries[1].URL != "https://www.youtube.com/watch?v=def456" {
		t.Errorf("entry 1 url = %q", entries[1].URL)
	}
	// Channel is the artist fallback
	if entries[1].Artist != "Channel B" {
		t.Errorf("entry 1 artist = %q, want channel fallback", entries[1].Artist)
	}
}

func TestParseSearchDump_Limit(t *testing.T) {
	raw := `{"entries": [{"id": "a", "title": "A"}, {"id": "b", "title": "B"}, {"id": "c", "title": "C"}]}`

	entries, err := parseSearchDump(raw, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("got %d entries, want the limit of 2", len(entries))
	}
}

func TestParseSearchDump_SingleEntry(t *testing.T) {
	// A direct link dumps one object with no entries array
	raw := `{"id": "xyz", "title": "Solo", "uploader": "Someone", "duration": 10}`

	entries, err := parseSearchDump(raw, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Title != "Solo" {
		t.Fatalf("entries = %+v, want the single track", entries)
	}
}

func TestParseSearchDump_Garbage(t *testing.T) {
	if _, err := parseSearchDump("not json", 10); err == nil {
		t.Error("expected an error for unparseable output")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		stderr      string
		unsupported bool
	}{
		{"unsupported url", errors.New("exit status 1"), "ERROR: Unsupported URL: https://example.com/page", true},
		{"invalid url", errors.New("exit status 1"), "ERROR: 'foo' is not a valid URL", true},
		{"network", errors.New("exit status 1"), "ERROR: unable to download webpage", false},
		{"no stderr", errors.New("yt-dlp not found"), "", false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var result *ytdlp.Result
			if test.stderr != "" {
				result = &ytdlp.Result{Stderr: test.stderr}
			}

			got := classify(test.err, result)
			if errors.Is(got, domain.ErrUnsupportedLink) != test.unsupported {
				t.Errorf("classify(%q) unsupported = %v, want %v", test.stderr, !test.unsupported, test.unsupported)
			}
		})
	}
}

func TestFirstLine(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"single line", "single line"},
		{"WARNING: noise\nERROR: the real problem\nmore noise", "ERROR: the real problem"},
		{"first\nsecond", "first"},
		{"  padded  ", "padded"},
	}

	for _, test := range tests {
		if got := firstLine(test.in); got != test.expected {
			t.Errorf("firstLine(%q) = %q, want %q", test.in, got, test.expected)
		}
	}
}
