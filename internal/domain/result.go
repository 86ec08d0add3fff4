package domain

import "time"

// Track is a single produced audio artifact on disk.
type Track struct {
	Path     string
	Title    string
	Duration time.Duration
}

// DownloadResult is produced by the fetch-transcode adapter on success:
// an ordered set of audio artifacts plus resolved display metadata.
// It is consumed immediately by the delivery step and never outlives the
// task's working directory.
type DownloadResult struct {
	Tracks []Track
	Artist string

	// RawInfo carries provider metadata as returned by the extractor,
	// for logging and history only.
	RawInfo map[string]any
}

// SearchEntry is one candidate from a free-text search.
type SearchEntry struct {
	ID       string
	URL      string
	Title    string
	Artist   string
	Duration time.Duration
}
