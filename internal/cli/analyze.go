package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/justestif/resonance/internal/pipeline"
)

// videoAnalyzer is the part of the pipeline used by the analyze command.
type videoAnalyzer interface {
	Run(ctx context.Context, videoPath string, progress func(pipeline.Event)) (*pipeline.Result, error)
}

func (a *app) analyzeCommand() *cobra.Command {
	var (
		videoPath     string
		skipRecommend bool
		asJSON        bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a video and suggest songs",
		Long: `Run the full pipeline on a local MP4: extract the audio, transcribe it,
read the mood and ask Spotify for matching songs.

Example:
  resonance analyze --video clip.mp4
  resonance analyze --video clip.mp4 --skip-recommend --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkConfig(a.cfg); err != nil {
				return err
			}
			p, err := newPipeline(cmd.Context(), a.cfg, !skipRecommend)
			if err != nil {
				return err
			}
			return runAnalyze(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), p, videoPath, asJSON)
		},
	}

	cmd.Flags().StringVar(&videoPath, "video", "", "path to the MP4 file (required)")
	cmd.Flags().BoolVar(&skipRecommend, "skip-recommend", false, "stop after the mood read")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	cmd.MarkFlagRequired("video")
	return cmd
}

func runAnalyze(ctx context.Context, out, progressOut io.Writer, analyzer videoAnalyzer, videoPath string, asJSON bool) error {
	if _, err := os.Stat(videoPath); err != nil {
		return fmt.Errorf("video not found: %w", err)
	}

	var message atomic.Value
	message.Store("Starting...")

	progress := mpb.NewWithContext(ctx, mpb.WithOutput(progressOut), mpb.WithWidth(40))
	bar := progress.AddBar(100,
		mpb.PrependDecorators(
			decor.Name("Analyzing "),
			decor.Percentage(decor.WCSyncSpace),
		),
		mpb.AppendDecorators(
			decor.Any(func(decor.Statistics) string {
				return message.Load().(string)
			}),
		),
	)

	res, err := analyzer.Run(ctx, videoPath, func(e pipeline.Event) {
		message.Store(e.Message)
		bar.SetCurrent(int64(e.Progress))
	})
	if err != nil && res == nil {
		bar.Abort(false)
		progress.Wait()
		return err
	}
	message.Store("Done")
	bar.SetCurrent(100)
	progress.Wait()

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(res); encErr != nil {
			return encErr
		}
	} else {
		fmt.Fprint(out, FormatResult(res))
	}

	if err != nil {
		if errors.Is(err, pipeline.ErrRecommendation) {
			return fmt.Errorf("mood read succeeded but %w", err)
		}
		return err
	}
	return nil
}
