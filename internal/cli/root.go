// Package cli implements the resonance command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/justestif/resonance/internal/config"
	"github.com/justestif/resonance/internal/logging"
)

// envFile is loaded into the environment when present.
const envFile = ".env"

// app carries state shared by the subcommands.
type app struct {
	configPath string
	logLevel   string
	cfg        *config.Config
	prompter   Prompter
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&app{prompter: &SurveyPrompter{}})
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "resonance",
		Short: "Suggest background music for a video from what is said in it",
		Long: `resonance listens to the speech in an MP4, reads its emotional tone and
turns it into a musical mood profile used to ask Spotify for songs.

  - serve the upload page and analysis stream
  - analyze a video from the terminal
  - map emotion scores to a mood profile
  - export a video with an instrumental laid underneath

Example:
  resonance analyze --video clip.mp4`,
		SilenceUsage:      true,
		PersistentPreRunE: a.loadConfig,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultPath, "config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (overrides config)")

	root.AddCommand(
		a.serveCommand(),
		a.analyzeCommand(),
		a.moodCommand(),
		a.exportCommand(),
		a.setupCommand(),
	)
	return root
}

func (a *app) loadConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath, envFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if err := logging.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
		return err
	}
	logging.SetOutput(cmd.ErrOrStderr())
	a.cfg = cfg
	return nil
}
