package commands

import (
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "vox-core",
	Short: "Push-to-talk voice session coordinator",
	Long: `vox-core - a push-to-talk voice session coordinator.

One coordinator runs per terminal. It captures microphone audio on a
push-to-talk gesture, transcribes it, and plays queued speech, all
driven over a loopback HTTP control protocol. The control port is
derived from the terminal identity, so hotkey clients can find the
session without configuration.

Credentials are read from the environment:
  DEEPGRAM_API_KEY   Deepgram recognizer and synthesizer
  OPENAI_API_KEY     OpenAI recognizer`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
}
