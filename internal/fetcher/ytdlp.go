package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/domain"
	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/infra/logger"
)

// YTDLP drives yt-dlp for both download+transcode and free-text search.
type YTDLP struct {
	log         *logger.Logger
	cookiesFile string
}

func NewYTDLP(log *logger.Logger, cookiesFile string) *YTDLP {
	return &YTDLP{log: log, cookiesFile: cookiesFile}
}

func (y *YTDLP) Download(ctx context.Context, url, outDir string, onProgress func(Progress)) (*domain.DownloadResult, error) {
	dl := ytdlp.New().
		ExtractAudio().
		AudioFormat("mp3").
		AudioQuality("0").
		RestrictFilenames().
		ForceOverwrites().
		Output(filepath.Join(outDir, "%(playlist_index|)s%(title)s.%(ext)s"))

	if y.cookiesFile != "" {
		dl = dl.Cookies(y.cookiesFile)
	}

	dl.ProgressFunc(500*time.Millisecond, func(update ytdlp.ProgressUpdate) {
		if onProgress == nil {
			return
		}
		onProgress(snapshotProgress(&update))
	})

	result, err := dl.Run(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, classify(err, result)
	}

	res, err := y.collect(result, outDir)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// collect maps extractor output to produced artifacts on disk. yt-dlp
// reports the pre-transcode filename, so the extension is rewritten to the
// audio format; a directory scan backstops entries the report missed.
func (y *YTDLP) collect(result *ytdlp.Result, outDir string) (*domain.DownloadResult, error) {
	res := &domain.DownloadResult{}

	infos, err := result.GetExtractedInfo()
	if err != nil {
		y.log.Warn("could not parse extractor metadata: %v", err)
	}

	seen := make(map[string]bool)
	for _, info := range infos {
		if info == nil {
			continue
		}

		if res.Artist == "" {
			res.Artist = displayArtist(info)
		}

		path := audioPath(info)
		if path == "" {
			continue
		}
		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}

		track := domain.Track{Path: path, Title: filepath.Base(path)}
		if info.Title != nil && *info.Title != "" {
			track.Title = *info.Title
		}
		if info.Duration != nil {
			track.Duration = time.Duration(*info.Duration * float64(time.Second))
		}

		res.Tracks = append(res.Tracks, track)
		seen[path] = true
	}

	// Backstop: anything transcoded into the task dir that the metadata
	// pass did not account for.
	extra, globErr := filepath.Glob(filepath.Join(outDir, "*.mp3"))
	if globErr == nil {
		sort.Strings(extra)
		for _, path := range extra {
			if seen[path] {
				continue
			}
			title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			res.Tracks = append(res.Tracks, domain.Track{Path: path, Title: title})
		}
	}

	if len(res.Tracks) == 0 {
		return nil, domain.ErrNoArtifacts
	}
	return res, nil
}

func (y *YTDLP) Search(ctx context.Context, query string, limit int) ([]domain.SearchEntry, error) {
	target := query
	if !strings.HasPrefix(query, "http://") && !strings.HasPrefix(query, "https://") {
		target = fmt.Sprintf("ytsearch%d:%s", limit, query)
	}

	cmd := ytdlp.New().
		DumpSingleJSON().
		FlatPlaylist().
		SkipDownload()

	if y.cookiesFile != "" {
		cmd = cmd.Cookies(y.cookiesFile)
	}

	result, err := cmd.Run(ctx, target)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, classify(err, result)
	}

	return parseSearchDump(result.Stdout, limit)
}

// searchDump is the slice of yt-dlp's single-JSON output the search flow
// needs. Flat-playlist entries carry no filenames, just identities.
type searchDump struct {
	ID       string  `json:"id"`
	URL      string  `json:"url"`
	Title    string  `json:"title"`
	Uploader string  `json:"uploader"`
	Channel  string  `json:"channel"`
	Duration float64 `json:"duration"`

	Entries []searchDump `json:"entries"`
}

func parseSearchDump(raw string, limit int) ([]domain.SearchEntry, error) {
	var dump searchDump
	if err := json.Unmarshal([]byte(raw), &dump); err != nil {
		return nil, fmt.Errorf("failed to parse search output: %w", err)
	}

	flat := dump.Entries
	if len(flat) == 0 && dump.ID != "" {
		// A direct link resolves to a single entry, not a playlist
		flat = []searchDump{dump}
	}

	var out []domain.SearchEntry
	for _, e := range flat {
		if len(out) >= limit {
			break
		}

		url := e.URL
		if url == "" && e.ID != "" {
			url = "https://www.youtube.com/watch?v=" + e.ID
		}

		artist := e.Uploader
		if artist == "" {
			artist = e.Channel
		}

		out = append(out, domain.SearchEntry{
			ID:       e.ID,
			URL:      url,
			Title:    e.Title,
			Artist:   artist,
			Duration: time.Duration(e.Duration * float64(time.Second)),
		})
	}
	return out, nil
}

func snapshotProgress(update *ytdlp.ProgressUpdate) Progress {
	var p Progress

	if update.TotalBytes > 0 {
		p.Percent = float64(update.DownloadedBytes) / float64(update.TotalBytes) * 100
	}

	if !update.Started.IsZero() {
		elapsed := time.Since(update.Started)
		if elapsed.Seconds() > 0 {
			p.Rate = float64(update.DownloadedBytes) / elapsed.Seconds()
		}
	}

	p.ETA = update.ETA()
	return p
}

func audioPath(info *ytdlp.ExtractedInfo) string {
	if info.Filename == nil || *info.Filename == "" {
		return ""
	}

	path := *info.Filename
	ext := filepath.Ext(path)
	if ext != ".mp3" {
		path = strings.TrimSuffix(path, ext) + ".mp3"
	}
	return path
}

func displayArtist(info *ytdlp.ExtractedInfo) string {
	if info.Artist != nil && *info.Artist != "" {
		return *info.Artist
	}
	if info.Uploader != nil && *info.Uploader != "" {
		return *info.Uploader
	}
	if info.Channel != nil && *info.Channel != "" {
		return *info.Channel
	}
	return ""
}

// classify sorts extractor failures into the taxonomy the orchestrator
// reports on: unsupported links get their own user-facing message,
// everything else is a generic failure.
func classify(err error, result *ytdlp.Result) error {
	detail := err.Error()
	if result != nil && result.Stderr != "" {
		detail = result.Stderr
	}

	lower := strings.ToLower(detail)
	if strings.Contains(lower, "unsupported url") || strings.Contains(lower, "is not a valid url") {
		return fmt.Errorf("%w: %s", domain.ErrUnsupportedLink, firstLine(detail))
	}

	return fmt.Errorf("extractor failed: %s", firstLine(detail))
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "ERROR") || strings.HasPrefix(line, "error") {
			return line
		}
	}
	if i := strings.IndexByte(s, '\n'); i > 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSpace(s)
}
