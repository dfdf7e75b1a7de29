package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/zsiec/mkv/matroska"
)

// fileProfile is the on-disk form of a mux profile.
type fileProfile struct {
	DocType            string  `toml:"doctype"`
	FrameRate          float64 `toml:"frame_rate"`
	TimestampScale     int64   `toml:"timestamp_scale"`
	Title              string  `toml:"title"`
	MuxingApp          string  `toml:"muxing_app"`
	WritingApp         string  `toml:"writing_app"`
	UnknownSizeSegment bool    `toml:"unknown_size_segment"`
	TrackName          string  `toml:"track_name"`
	Language           string  `toml:"language"`
	Quality            int     `toml:"quality"`
}

// muxProfile holds everything the mux command needs besides the frames.
type muxProfile struct {
	Options   matroska.Options
	TrackName string
	Language  string
	Quality   int
}

func defaultProfile() muxProfile {
	return muxProfile{
		Options: matroska.Options{
			DocType:        matroska.DocTypeWebM,
			FrameRate:      25,
			TimestampScale: matroska.DefaultTimestampScale,
			MuxingApp:      "mkvtool",
			WritingApp:     "mkvtool " + version,
		},
	}
}

// loadProfile reads a TOML mux profile. An empty path returns the defaults.
func loadProfile(path string) (muxProfile, error) {
	p := defaultProfile()
	if path == "" {
		return p, nil
	}

	var raw fileProfile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return muxProfile{}, fmt.Errorf("load profile: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return muxProfile{}, fmt.Errorf("load profile: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("doctype") {
		dt := strings.TrimSpace(raw.DocType)
		if dt != matroska.DocTypeWebM && dt != matroska.DocTypeMatroska {
			return muxProfile{}, fmt.Errorf("load profile: doctype %q, want webm or matroska", dt)
		}
		p.Options.DocType = dt
	}
	if meta.IsDefined("frame_rate") {
		if raw.FrameRate <= 0 {
			return muxProfile{}, fmt.Errorf("load profile: frame_rate %v must be positive", raw.FrameRate)
		}
		p.Options.FrameRate = raw.FrameRate
	}
	if meta.IsDefined("timestamp_scale") {
		if raw.TimestampScale <= 0 {
			return muxProfile{}, fmt.Errorf("load profile: timestamp_scale %d must be positive", raw.TimestampScale)
		}
		p.Options.TimestampScale = uint64(raw.TimestampScale)
	}
	if meta.IsDefined("title") {
		p.Options.Title = raw.Title
	}
	if meta.IsDefined("muxing_app") {
		p.Options.MuxingApp = strings.TrimSpace(raw.MuxingApp)
	}
	if meta.IsDefined("writing_app") {
		p.Options.WritingApp = strings.TrimSpace(raw.WritingApp)
	}
	if meta.IsDefined("unknown_size_segment") {
		p.Options.UnknownSizeSegment = raw.UnknownSizeSegment
	}
	if meta.IsDefined("track_name") {
		p.TrackName = raw.TrackName
	}
	if meta.IsDefined("language") {
		p.Language = strings.TrimSpace(raw.Language)
	}
	if meta.IsDefined("quality") {
		if raw.Quality < 1 || raw.Quality > 100 {
			return muxProfile{}, fmt.Errorf("load profile: quality %d out of range 1-100", raw.Quality)
		}
		p.Quality = raw.Quality
	}
	return p, nil
}
