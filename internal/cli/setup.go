package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/justestif/resonance/internal/config"
)

// Prompter asks the user for values. Tests swap in a scripted one.
type Prompter interface {
	Input(message, defaultValue string) (string, error)
	Password(message string) (string, error)
	Select(message string, options []string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
}

// SurveyPrompter implements Prompter on the terminal.
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Password(message string) (string, error) {
	result := ""
	if err := survey.AskOne(&survey.Password{Message: message}, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Select{
		Message: message,
		Options: options,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

var errPromptCancelled = errors.New("prompt cancelled")

func (a *app) setupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Create the configuration file interactively",
		Long: `Prompts for Spotify credentials, the transcription and emotion backends and
the server address, then writes the config file given by --config.`,
		// The file being written may not exist or parse yet.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSetup(a.prompter, a.configPath, cmd.OutOrStdout())
		},
	}
}

func runSetup(prompter Prompter, configPath string, out io.Writer) error {
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm(configPath+" already exists. Overwrite?", false)
		if err != nil {
			return errPromptCancelled
		}
		if !overwrite {
			fmt.Fprintln(out, "Setup cancelled.")
			return nil
		}
	}

	fmt.Fprintln(out, "Welcome to resonance setup!")
	fmt.Fprintln(out)

	cfg := config.Default()

	if err := promptSpotify(prompter, cfg); err != nil {
		return err
	}
	if err := promptBackends(prompter, cfg); err != nil {
		return err
	}
	if err := promptServer(prompter, cfg); err != nil {
		return err
	}

	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Configuration saved to %s\n", configPath)
	return nil
}

func promptSpotify(prompter Prompter, cfg *config.Config) error {
	id, err := prompter.Input("Spotify client ID (blank to skip recommendations)", "")
	if err != nil {
		return errPromptCancelled
	}
	if id == "" {
		return nil
	}
	cfg.Spotify.ClientID = id

	secret, err := prompter.Password("Spotify client secret")
	if err != nil {
		return errPromptCancelled
	}
	if secret == "" {
		return errors.New("client secret is required when a client ID is given")
	}
	cfg.Spotify.ClientSecret = secret

	market, err := prompter.Input("Spotify market", cfg.Spotify.Market)
	if err != nil {
		return errPromptCancelled
	}
	if market != "" {
		cfg.Spotify.Market = market
	}
	return nil
}

func promptBackends(prompter Prompter, cfg *config.Config) error {
	backend, err := prompter.Select("Transcription backend",
		[]string{config.BackendFasterWhisper, config.BackendOpenAI}, cfg.Transcribe.Backend)
	if err != nil {
		return errPromptCancelled
	}
	cfg.Transcribe.Backend = backend

	classifier, err := prompter.Select("Emotion classifier",
		[]string{config.BackendLexicon, config.BackendOpenAI}, cfg.Emotion.Classifier)
	if err != nil {
		return errPromptCancelled
	}
	cfg.Emotion.Classifier = classifier

	if backend == config.BackendOpenAI || classifier == config.BackendOpenAI {
		key, err := prompter.Password("OpenAI API key")
		if err != nil {
			return errPromptCancelled
		}
		if key == "" {
			return errors.New("OpenAI API key is required for the openai backends")
		}
		cfg.OpenAI.APIKey = key
	}

	if backend == config.BackendFasterWhisper {
		model, err := prompter.Input("faster-whisper model", cfg.Transcribe.Model)
		if err != nil {
			return errPromptCancelled
		}
		if model != "" {
			cfg.Transcribe.Model = model
		}
	}
	return nil
}

func promptServer(prompter Prompter, cfg *config.Config) error {
	addr, err := prompter.Input("Listen address", cfg.Server.Addr)
	if err != nil {
		return errPromptCancelled
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	redirect, err := prompter.Input("Spotify redirect URI", cfg.Server.RedirectURI)
	if err != nil {
		return errPromptCancelled
	}
	if redirect != "" {
		cfg.Server.RedirectURI = redirect
	}

	useDB, err := prompter.Confirm("Store sessions and playlists in PostgreSQL?", false)
	if err != nil {
		return errPromptCancelled
	}
	if useDB {
		url, err := prompter.Input("Database URL", "postgres://localhost:5432/resonance")
		if err != nil {
			return errPromptCancelled
		}
		cfg.Database.URL = url
	}
	return nil
}
