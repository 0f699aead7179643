// Package resolver turns user-supplied URLs into playable streams with
// display metadata. YouTube links are resolved through the YouTube API
// client; any other fetchable URL is handed to ffmpeg as-is.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	youtube "github.com/kkdai/youtube/v2"
	"github.com/rs/zerolog"

	"skipjack/internal/music/engine"
)

// ErrNotURL means the input is not recognizable as a fetchable resource;
// resolution is not even attempted.
var ErrNotURL = errors.New("input is not a valid URL")

const metadataCacheSize = 256

var youtubeRegex = regexp.MustCompile(`(?:https?:\/\/)?(?:www\.|music\.)?(youtube\.com|youtu\.be)\/\S+`)

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func isYouTubeURL(input string) bool {
	return youtubeRegex.MatchString(input)
}

type Resolver struct {
	yt    *youtube.Client
	cache *lru.Cache[string, engine.Track]
	log   zerolog.Logger
}

func New(log zerolog.Logger) *Resolver {
	cache, _ := lru.New[string, engine.Track](metadataCacheSize)
	return &Resolver{
		yt: &youtube.Client{
			HTTPClient: &http.Client{Timeout: 15 * time.Second},
		},
		cache: cache,
		log:   log,
	}
}

// Resolve validates the input and returns a stream carrying its metadata.
// Nothing is enqueued or fetched beyond metadata; the audio itself is opened
// lazily when playback starts.
func (r *Resolver) Resolve(ctx context.Context, input string) (engine.Stream, error) {
	input = strings.TrimSpace(input)
	if !isURL(input) {
		return nil, ErrNotURL
	}

	if isYouTubeURL(input) {
		track, err := r.youtubeTrack(ctx, input)
		if err != nil {
			return nil, err
		}
		return &youtubeStream{res: r, url: input, track: track}, nil
	}

	// Direct audio URL; no metadata beyond the URL itself.
	return &directStream{url: input, track: engine.Track{SourceURL: input}}, nil
}

func (r *Resolver) youtubeTrack(ctx context.Context, url string) (engine.Track, error) {
	if track, ok := r.cache.Get(url); ok {
		return track, nil
	}

	video, err := r.yt.GetVideoContext(ctx, url)
	if err != nil {
		return engine.Track{}, fmt.Errorf("failed to resolve video: %w", err)
	}

	track := engine.Track{
		Title:     video.Title,
		SourceURL: url,
		Duration:  video.Duration,
	}
	if len(video.Thumbnails) > 0 {
		track.Thumbnail = video.Thumbnails[0].URL
	}

	r.cache.Add(url, track)
	r.log.Debug().Str("title", track.Title).Str("url", url).Msg("resolved track")
	return track, nil
}

type youtubeStream struct {
	res   *Resolver
	url   string
	track engine.Track
}

func (s *youtubeStream) Track() engine.Track { return s.track }

func (s *youtubeStream) Open(ctx context.Context) (io.ReadCloser, error) {
	// Stream URLs expire, so the video is re-fetched at open time; only the
	// display metadata is cached.
	video, err := s.res.yt.GetVideoContext(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch video: %w", err)
	}

	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return nil, errors.New("no audio formats found for video")
	}

	link, err := s.res.yt.GetStreamURLContext(ctx, video, &formats[0])
	if err != nil {
		return nil, fmt.Errorf("get stream URL error: %w", err)
	}

	return openPCM(ctx, link)
}

type directStream struct {
	url   string
	track engine.Track
}

func (s *directStream) Track() engine.Track { return s.track }

func (s *directStream) Open(ctx context.Context) (io.ReadCloser, error) {
	return openPCM(ctx, s.url)
}
