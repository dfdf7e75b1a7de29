package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zsiec/mkv/internal/pipeline"
	"github.com/zsiec/mkv/matroska"
)

func newMoQCmd() *cobra.Command {
	var (
		outDir    string
		namespace string
	)
	cmd := &cobra.Command{
		Use:   "moq <file>",
		Short: "Write the tracks of a file as MoQ subgroup streams with a catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			res, err := matroska.Decode(buf)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if namespace == "" {
				namespace = "mkv/" + filepath.Base(args[0])
			}
			p := pipeline.New(namespace, res, dirPublisher{root: outDir}, slog.Default())
			return p.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", envOr("MKV_OUT", "moq"), "output directory ($MKV_OUT)")
	cmd.Flags().StringVar(&namespace, "namespace", "", "catalog namespace (default mkv/<file name>)")
	return cmd
}

// dirPublisher stores each subgroup stream as <root>/<track>/<group>.sub.
type dirPublisher struct {
	root string
}

func (d dirPublisher) OpenStream(_ context.Context, track string, groupID uint64) (io.WriteCloser, error) {
	dir := filepath.Join(d.root, track)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	f, err := os.Create(filepath.Join(dir, fmt.Sprintf("%06d.sub", groupID)))
	if err != nil {
		return nil, err
	}
	return f, nil
}
