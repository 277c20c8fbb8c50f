package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var speakCmd = &cobra.Command{
	Use:   "speak [text]",
	Short: "Synthesize speech with the active endpoint",
	Long: `Synthesize text with the active speech endpoint and write the audio to a
file. Repeated requests for the same text, model, voice and speed are served
from the audio cache.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSpeak,
}

// speakOutput is the destination audio file.
var speakOutput string

func init() {
	speakCmd.Flags().StringVarP(&speakOutput, "output", "o", "speech.mp3", "Output audio file")
	rootCmd.AddCommand(speakCmd)
}

func runSpeak(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd); err != nil {
		return err
	}
	if speechService == nil {
		return errNotConfigured("speech")
	}

	text := strings.Join(args, " ")
	audio, cached, err := speechService.SpeakActive(cmd.Context(), text)
	if err != nil {
		return fmt.Errorf("failed to synthesize speech: %w", err)
	}

	if err := os.WriteFile(speakOutput, audio, 0600); err != nil {
		return fmt.Errorf("failed to write audio: %w", err)
	}

	source := "synthesized"
	if cached {
		source = "cached"
	}
	cmd.Printf("Wrote %s (%s, %s)\n", speakOutput, formatBytes(int64(len(audio))), source)
	return nil
}
