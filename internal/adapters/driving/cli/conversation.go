package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var conversationCmd = &cobra.Command{
	Use:     "conversation",
	Aliases: []string{"conv"},
	Short:   "Manage stored conversations",
}

var conversationListCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversations, most recently active first",
	Args:  cobra.NoArgs,
	RunE:  runConversationList,
}

var conversationShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print a conversation transcript",
	Args:  cobra.ExactArgs(1),
	RunE:  runConversationShow,
}

var conversationNewCmd = &cobra.Command{
	Use:   "new [title]",
	Short: "Start an empty conversation",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConversationNew,
}

var conversationDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a conversation and its messages",
	Args:  cobra.ExactArgs(1),
	RunE:  runConversationDelete,
}

func init() {
	conversationCmd.AddCommand(conversationListCmd)
	conversationCmd.AddCommand(conversationShowCmd)
	conversationCmd.AddCommand(conversationNewCmd)
	conversationCmd.AddCommand(conversationDeleteCmd)
	rootCmd.AddCommand(conversationCmd)
}

func runConversationList(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(cmd); err != nil {
		return err
	}
	if conversationService == nil {
		return errNotConfigured("conversation")
	}

	convs, err := conversationService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list conversations: %w", err)
	}

	if len(convs) == 0 {
		cmd.Println("No conversations.")
		return nil
	}

	for i := range convs {
		cmd.Printf("  %-6d %s\n", convs[i].ID, convs[i].Title)
		cmd.Printf("         %d messages, updated %s\n", convs[i].MessageCount, formatAge(convs[i].UpdatedAt))
	}
	cmd.Println()
	cmd.Printf("Total: %d conversations\n", len(convs))
	return nil
}

func runConversationShow(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd); err != nil {
		return err
	}
	if conversationService == nil {
		return errNotConfigured("conversation")
	}

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	conv, msgs, err := conversationService.Get(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to get conversation: %w", err)
	}

	cmd.Printf("Conversation %d: %s\n", conv.ID, conv.Title)
	cmd.Printf("  Created: %s\n", formatTime(conv.CreatedAt))
	cmd.Printf("  Updated: %s\n", formatTime(conv.UpdatedAt))
	cmd.Println()

	for i := range msgs {
		role := "assistant"
		if msgs[i].IsUser {
			role = "user"
		}
		cmd.Printf("[%s] %s\n", formatTime(msgs[i].CreatedAt), role)
		if msgs[i].ReasoningContent != nil && *msgs[i].ReasoningContent != "" {
			cmd.Printf("  (reasoning) %s\n", indent(*msgs[i].ReasoningContent))
		}
		if msgs[i].Content != "" {
			cmd.Printf("  %s\n", indent(msgs[i].Content))
		}
		if msgs[i].HasImage() {
			contentType := "image"
			if msgs[i].ImageContentType != nil {
				contentType = *msgs[i].ImageContentType
			}
			cmd.Printf("  <%s, %s>\n", contentType, formatBytes(int64(len(msgs[i].ImageData))))
		}
		cmd.Println()
	}
	return nil
}

func runConversationNew(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd); err != nil {
		return err
	}
	if conversationService == nil {
		return errNotConfigured("conversation")
	}

	title := ""
	if len(args) > 0 {
		title = args[0]
	}
	conv, err := conversationService.Start(cmd.Context(), title)
	if err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}
	cmd.Printf("Created conversation %d: %s\n", conv.ID, conv.Title)
	return nil
}

func runConversationDelete(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd); err != nil {
		return err
	}
	if conversationService == nil {
		return errNotConfigured("conversation")
	}

	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := conversationService.Delete(cmd.Context(), id); err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	cmd.Printf("Deleted conversation %d\n", id)
	return nil
}

func indent(s string) string {
	return strings.ReplaceAll(strings.TrimRight(s, "\n"), "\n", "\n  ")
}
