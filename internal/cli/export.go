package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/justestif/resonance/internal/instrumental"
	"github.com/justestif/resonance/internal/media"
)

func (a *app) exportCommand() *cobra.Command {
	var (
		req        instrumental.ExportRequest
		durationMS int64
		startMS    int64
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Lay an instrumental of a song under a video",
		Long: `Search YouTube for an instrumental version of a song with yt-dlp, download
it and mix it under the video's own audio. The video stream is copied.

Example:
  resonance export --video clip.mp4 --song "Anchor" --artist "Novo Amor"
  resonance export --video clip.mp4 --song "Outro" --artist M83 --start-ms 30000 --music-vol 0.4`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg
			req.Duration = time.Duration(durationMS) * time.Millisecond
			req.Start = time.Duration(startMS) * time.Millisecond

			finder := instrumental.NewFinder(cfg.Server.UploadDir, instrumental.WithYTDLPPath(cfg.Media.YTDLPPath))
			mixer := media.NewMixer(
				media.NewProber(cfg.Media.FFprobePath, nil),
				media.WithFFmpegPath(cfg.Media.FFmpegPath),
			)

			out, err := instrumental.NewExporter(finder, mixer, cfg.Server.ExportDir).Export(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s\n", out)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.VideoPath, "video", "", "path to the MP4 file (required)")
	f.StringVar(&req.Song, "song", "", "song title (required)")
	f.StringVar(&req.Artist, "artist", "", "artist name")
	f.Int64Var(&durationMS, "duration-ms", 0, "length of the original song, used to rank results")
	f.Int64Var(&startMS, "start-ms", 0, "offset into the instrumental")
	f.Float64Var(&req.VideoVolume, "video-vol", instrumental.DefaultVideoVolume, "volume of the video's own audio (0-2)")
	f.Float64Var(&req.MusicVolume, "music-vol", instrumental.DefaultMusicVolume, "volume of the instrumental (0-2)")
	cmd.MarkFlagRequired("video")
	cmd.MarkFlagRequired("song")
	return cmd
}
