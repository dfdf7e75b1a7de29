package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/zsiec/mkv/internal/ebml"
	"github.com/zsiec/mkv/matroska"
)

func newInfoCmd() *cobra.Command {
	var asJSON, tree bool
	cmd := &cobra.Command{
		Use:   "info <file> [file...]",
		Short: "Print container metadata",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			infos := make([]*matroska.DocInfo, len(args))
			bufs := make([][]byte, len(args))
			g, _ := errgroup.WithContext(cmd.Context())
			g.SetLimit(workers(cmd))
			for i, path := range args {
				g.Go(func() error {
					buf, err := os.ReadFile(path)
					if err != nil {
						return err
					}
					info, err := matroska.ParseInfo(buf)
					if err != nil {
						return fmt.Errorf("%s: %w", path, err)
					}
					infos[i], bufs[i] = info, buf
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(infos)
			}
			for i, info := range infos {
				printInfo(cmd.OutOrStdout(), args[i], info)
				if tree {
					printTree(cmd.OutOrStdout(), bufs[i])
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of text")
	cmd.Flags().BoolVar(&tree, "tree", false, "also print the element tree")
	return cmd
}

func printInfo(w io.Writer, path string, info *matroska.DocInfo) {
	fmt.Fprintf(w, "%s\n", path)
	fmt.Fprintf(w, "  doctype:   %s (version %d, read version %d)\n", info.DocType, info.DocTypeVersion, info.DocTypeReadVersion)
	fmt.Fprintf(w, "  duration:  %v\n", info.DurationTime())
	if info.Title != "" {
		fmt.Fprintf(w, "  title:     %s\n", info.Title)
	}
	fmt.Fprintf(w, "  app:       %s / %s\n", info.MuxingApp, info.WritingApp)
	if len(info.SegmentUID) > 0 {
		fmt.Fprintf(w, "  uid:       %s\n", hex.EncodeToString(info.SegmentUID))
	}
	for _, t := range info.Tracks {
		fmt.Fprintf(w, "  track %d:   %s %s", t.Number, t.Type, t.CodecID)
		if v := t.Video; v != nil {
			fmt.Fprintf(w, " %dx%d", v.PixelWidth, v.PixelHeight)
		}
		if a := t.Audio; a != nil {
			fmt.Fprintf(w, " %gHz %dch", a.SamplingFrequency, a.Channels)
			if a.BitDepth > 0 {
				fmt.Fprintf(w, " %dbit", a.BitDepth)
			}
		}
		if t.Language != "" {
			fmt.Fprintf(w, " [%s]", t.Language)
		}
		fmt.Fprintln(w)
	}
}

// printTree dumps the top-level elements of buf and the known masters below
// them. Blocks and other leaves are listed without their payload.
func printTree(w io.Writer, buf []byte) {
	fmt.Fprintln(w, "  elements:")
	for _, el := range ebml.Walk(buf, 0) {
		printElement(w, ebml.Parse(buf, el), 2)
	}
}

func printElement(w io.Writer, el ebml.Element, depth int) {
	size := fmt.Sprint(el.Size)
	switch {
	case el.Unknown():
		size = "unknown"
	case el.Truncated:
		size += " (truncated)"
	}
	fmt.Fprintf(w, "%*s%s @%d header=%d size=%s\n", depth*2, "", ebml.Name(el.ID), el.Offset, el.HeaderSize(), size)
	for _, c := range el.Children {
		printElement(w, c, depth+1)
	}
}
