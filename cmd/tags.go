package cmd

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/spf13/cobra"

	"github.com/yhkl-dev/rainplayer/domain"
	"github.com/yhkl-dev/rainplayer/library"
	"github.com/yhkl-dev/rainplayer/metadata"
	"github.com/yhkl-dev/rainplayer/ui"
)

// tagsCmd prints what the player would show for each file
var tagsCmd = &cobra.Command{
	Use:   "tags <files, folders or globs...>",
	Short: "Print title, artist, album art and duration of audio files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recursive, err := cmd.Flags().GetBool("recursive")
		if err != nil {
			return err
		}
		files, err := library.NewLocalLibrary(recursive).Select(args...)
		if err != nil {
			return err
		}
		return printTags(cmd.Context(), cmd.OutOrStdout(), files, metadata.NewTagExtractor(), metadata.NewDecoderProber())
	},
}

func init() {
	rootCmd.AddCommand(tagsCmd)

	tagsCmd.Flags().BoolP("recursive", "r", true, "descend into sub folders")
}

func printTags(ctx context.Context, w io.Writer, files []domain.File, ext metadata.Extractor, prober metadata.Prober) error {
	if ctx == nil {
		ctx = context.Background()
	}
	for _, f := range files {
		if !f.IsAudio() {
			fmt.Fprintf(w, "%s\n  skipped: %s\n", f.Path, f.MediaType)
			continue
		}

		track := domain.NewTrack(f)
		res, err := ext.Extract(ctx, f)
		if err != nil {
			fmt.Fprintf(w, "%s\n  tags: %v\n", f.Path, err)
		}
		md := res.Metadata(f)

		duration := math.NaN()
		if prober != nil {
			if d, err := prober.Probe(ctx, track); err == nil {
				duration = d
			}
		}
		track.Source.Release()

		art := "none"
		if res.Picture != nil && len(res.Picture.Data) > 0 {
			art = fmt.Sprintf("%s, %d bytes", res.Picture.MIMEType, len(res.Picture.Data))
		}

		fmt.Fprintf(w, "%s\n", f.Path)
		fmt.Fprintf(w, "  title:    %s\n", md.Title)
		fmt.Fprintf(w, "  artist:   %s\n", md.Artist)
		fmt.Fprintf(w, "  art:      %s\n", art)
		fmt.Fprintf(w, "  duration: %s\n", ui.FormatRowDuration(duration))
	}
	return nil
}
