package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zsiec/mkv/codec/mjpeg"
	"github.com/zsiec/mkv/matroska"
)

func newFramesCmd() *cobra.Command {
	var (
		outDir  string
		quality int
	)
	cmd := &cobra.Command{
		Use:   "frames <file>",
		Short: "Decode the first video track and write every frame as a JPEG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			d := matroska.NewDemuxer(matroska.DemuxerOptWorkers(workers(cmd)))
			frames, err := d.DecodeVideoFrames(cmd.Context(), buf)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			for i, f := range frames {
				data, err := mjpeg.Encode(f.Image, quality)
				if err != nil {
					return err
				}
				name := filepath.Join(outDir, fmt.Sprintf("frame_%05d.jpg", i))
				if err := os.WriteFile(name, data, 0o644); err != nil {
					return err
				}
			}
			slog.Info("frames written", "count", len(frames), "dir", outDir)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", envOr("MKV_OUT", "frames"), "output directory ($MKV_OUT)")
	cmd.Flags().IntVar(&quality, "quality", mjpeg.DefaultQuality, "JPEG quality 1-100")
	return cmd
}
