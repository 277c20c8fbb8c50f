package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/murmur/internal/core/domain"
)

// protectedPrefix marks API keys already encrypted at rest.
const protectedPrefix = "enc:"

var providerCmd = &cobra.Command{
	Use:   "provider",
	Short: "Manage chat and speech endpoints",
}

var providerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured endpoints",
	Args:  cobra.NoArgs,
	RunE:  runProviderList,
}

var providerAddAPICmd = &cobra.Command{
	Use:   "add-api [name]",
	Short: "Add a chat endpoint",
	Long: `Add a chat endpoint. The API key is prompted for when --api-key is not
given; it is encrypted before it is stored.`,
	Args: cobra.ExactArgs(1),
	RunE: runProviderAddAPI,
}

var providerAddTTSCmd = &cobra.Command{
	Use:   "add-tts [name]",
	Short: "Add a speech endpoint",
	Args:  cobra.ExactArgs(1),
	RunE:  runProviderAddTTS,
}

var providerActivateCmd = &cobra.Command{
	Use:   "activate [tts-id]",
	Short: "Use a speech endpoint for playback",
	Args:  cobra.ExactArgs(1),
	RunE:  runProviderActivate,
}

var providerRemoveCmd = &cobra.Command{
	Use:   "remove [api|tts] [id]",
	Short: "Remove an endpoint",
	Args:  cobra.ExactArgs(2),
	RunE:  runProviderRemove,
}

// Flags for provider add commands.
var (
	providerURL       string
	providerAPIKey    string
	providerModel     string
	providerVoice     string
	providerSpeed     float64
	providerChannel   string
	providerStreaming bool
	providerVision    bool
	providerThinking  bool
	providerActive    bool
)

func init() {
	for _, c := range []*cobra.Command{providerAddAPICmd, providerAddTTSCmd} {
		c.Flags().StringVar(&providerURL, "url", "", "Endpoint base URL")
		c.Flags().StringVar(&providerAPIKey, "api-key", "", "API key (prompted when omitted)")
		c.Flags().StringVar(&providerModel, "model", "", "Model name")
		c.Flags().StringVar(&providerChannel, "channel", "", "Channel type (OpenAI, Anthropic, Gemini, Ollama)")
		c.Flags().BoolVar(&providerStreaming, "streaming", false, "Request streamed responses")
	}
	providerAddAPICmd.Flags().BoolVar(&providerVision, "multimodal", false, "Allow image attachments")
	providerAddAPICmd.Flags().BoolVar(&providerThinking, "thinking", false, "Model returns reasoning content")
	providerAddTTSCmd.Flags().StringVar(&providerVoice, "voice", "", "Voice preset")
	providerAddTTSCmd.Flags().Float64Var(&providerSpeed, "speed", 1.0, "Playback rate")
	providerAddTTSCmd.Flags().BoolVar(&providerActive, "active", false, "Use for playback")

	providerCmd.AddCommand(providerListCmd)
	providerCmd.AddCommand(providerAddAPICmd)
	providerCmd.AddCommand(providerAddTTSCmd)
	providerCmd.AddCommand(providerActivateCmd)
	providerCmd.AddCommand(providerRemoveCmd)
	rootCmd.AddCommand(providerCmd)
}

func runProviderList(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(cmd); err != nil {
		return err
	}
	if providerService == nil {
		return errNotConfigured("provider")
	}

	apis, err := providerService.ListAPI(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list chat endpoints: %w", err)
	}
	tts, err := providerService.ListTTS(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list speech endpoints: %w", err)
	}

	cmd.Println("[Chat]")
	if len(apis) == 0 {
		cmd.Println("  (none)")
	}
	for i := range apis {
		cmd.Printf("  %d  %s\n", apis[i].ID, apis[i].Name)
		cmd.Printf("     %s, %s @ %s\n", apis[i].ChannelType.Description(), apis[i].ModelName, apis[i].APIURL)
		cmd.Printf("     API Key: %s\n", describeKey(apis[i].APIKey))
	}
	cmd.Println()

	cmd.Println("[Speech]")
	if len(tts) == 0 {
		cmd.Println("  (none)")
	}
	for i := range tts {
		marker := " "
		if tts[i].IsActive {
			marker = "*"
		}
		cmd.Printf("%s %d  %s\n", marker, tts[i].ID, tts[i].Name)
		cmd.Printf("     %s/%s x%g @ %s\n", tts[i].Model, tts[i].Voice, tts[i].Speed, tts[i].APIURL)
		cmd.Printf("     API Key: %s\n", describeKey(tts[i].APIKey))
	}
	return nil
}

func runProviderAddAPI(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd); err != nil {
		return err
	}
	if providerService == nil {
		return errNotConfigured("provider")
	}

	cfg := &domain.APIConfiguration{
		Name:              args[0],
		APIURL:            providerURL,
		APIKey:            promptAPIKey(cmd),
		ModelName:         providerModel,
		StreamingEnabled:  providerStreaming,
		MultimodalEnabled: providerVision,
		ChannelType:       domain.ChannelType(providerChannel),
		SupportsThinking:  providerThinking,
	}
	if err := providerService.SaveAPI(cmd.Context(), cfg); err != nil {
		return fmt.Errorf("failed to add chat endpoint: %w", err)
	}
	cmd.Printf("Added chat endpoint %d: %s\n", cfg.ID, cfg.Name)
	return nil
}

func runProviderAddTTS(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd); err != nil {
		return err
	}
	if providerService == nil {
		return errNotConfigured("provider")
	}

	cfg := &domain.TTSConfiguration{
		Name:             args[0],
		APIURL:           providerURL,
		APIKey:           promptAPIKey(cmd),
		Model:            providerModel,
		Voice:            providerVoice,
		Speed:            providerSpeed,
		StreamingEnabled: providerStreaming,
		IsActive:         providerActive,
		ChannelType:      domain.ChannelType(providerChannel),
	}
	if err := providerService.SaveTTS(cmd.Context(), cfg); err != nil {
		return fmt.Errorf("failed to add speech endpoint: %w", err)
	}
	cmd.Printf("Added speech endpoint %d: %s\n", cfg.ID, cfg.Name)
	return nil
}

func runProviderActivate(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd); err != nil {
		return err
	}
	if providerService == nil {
		return errNotConfigured("provider")
	}

	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := providerService.ActivateTTS(cmd.Context(), id); err != nil {
		return fmt.Errorf("failed to activate speech endpoint: %w", err)
	}
	cmd.Printf("Speech endpoint %d is now active\n", id)
	return nil
}

func runProviderRemove(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd); err != nil {
		return err
	}
	if providerService == nil {
		return errNotConfigured("provider")
	}

	id, err := parseID(args[1])
	if err != nil {
		return err
	}

	switch strings.ToLower(args[0]) {
	case "api":
		err = providerService.DeleteAPI(cmd.Context(), id)
	case "tts":
		err = providerService.DeleteTTS(cmd.Context(), id)
	default:
		return fmt.Errorf("unknown endpoint kind %q: expected api or tts", args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to remove endpoint: %w", err)
	}
	cmd.Printf("Removed %s endpoint %d\n", strings.ToLower(args[0]), id)
	return nil
}

// promptAPIKey returns the --api-key flag or asks for a key when interactive.
func promptAPIKey(cmd *cobra.Command) string {
	if providerAPIKey != "" || !isInteractive() {
		return providerAPIKey
	}
	cmd.Print("Enter API key (empty for none): ")
	key := readSecret(cmd.InOrStdin())
	cmd.Println()
	return key
}

func describeKey(key string) string {
	switch {
	case key == "":
		return "(not set)"
	case strings.HasPrefix(key, protectedPrefix):
		return "(encrypted)"
	default:
		return maskAPIKey(key)
	}
}
