package main

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/zsiec/mkv/codec/mjpeg"
	"github.com/zsiec/mkv/matroska"
)

func newMuxCmd() *cobra.Command {
	var (
		profilePath string
		outPath     string
	)
	cmd := &cobra.Command{
		Use:   "mux <image> [image...]",
		Short: "Build an MJPEG Matroska or WebM file from JPEG or PNG images",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProfile(profilePath)
			if err != nil {
				return err
			}
			p.Options.Logger = slog.Default()

			frames := make([]matroska.Frame, 0, len(args))
			var width, height int
			for i, path := range args {
				data, err := readJPEG(path, p.Quality)
				if err != nil {
					return err
				}
				w, h, err := mjpeg.Size(data)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				if i == 0 {
					width, height = w, h
				} else if w != width || h != height {
					return fmt.Errorf("%s: %dx%d differs from first image %dx%d", path, w, h, width, height)
				}
				frames = append(frames, matroska.Frame{TrackNumber: 1, Data: data})
			}

			track := matroska.Track{
				Number:   1,
				Type:     matroska.TrackVideo,
				CodecID:  matroska.CodecMJPEG,
				Name:     p.TrackName,
				Language: p.Language,
				Video:    &matroska.VideoSettings{PixelWidth: uint32(width), PixelHeight: uint32(height)},
			}
			out, err := matroska.Encode([]matroska.Track{track}, frames, p.Options)
			if err != nil {
				return err
			}
			if err := os.WriteFile(outPath, out, 0o644); err != nil {
				return err
			}
			slog.Info("muxed", "frames", len(frames), "size", fmt.Sprintf("%dx%d", width, height), "out", outPath, "bytes", len(out))
			return nil
		},
	}
	cmd.Flags().StringVarP(&profilePath, "profile", "p", envOr("MKV_PROFILE", ""), "TOML mux profile ($MKV_PROFILE)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "out.webm", "output file")
	return cmd
}

// readJPEG returns the JPEG bytes of path. JPEG input is used as is; other
// image formats are re-encoded at quality.
func readJPEG(path string, quality int) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if bytes.HasPrefix(data, []byte{0xFF, 0xD8}) {
		return data, nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return mjpeg.Encode(img, quality)
}
