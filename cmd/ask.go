package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/deepfocus-cli/summarize"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the learning assistant about a video",
	Long: `Ask a question about a video you are studying. Pass exported notes with --notes so
the answer can build on them.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.AI.APIKey == "" {
			return errors.New("ai.api_key is not configured (or set DEEPFOCUS_AI_API_KEY)")
		}

		notesPath, _ := cmd.Flags().GetString("notes")
		title, _ := cmd.Flags().GetString("title")
		extra, _ := cmd.Flags().GetString("context")

		cc := summarize.ChatContext{VideoTitle: title, Extra: extra}
		if notesPath != "" {
			data, err := os.ReadFile(notesPath)
			if err != nil {
				return fmt.Errorf("failed to read notes: %w", err)
			}
			cc.Notes = string(data)
			if cc.VideoTitle == "" {
				cc.VideoTitle = strings.TrimSuffix(filepath.Base(notesPath), filepath.Ext(notesPath))
			}
		}

		client := summarize.NewClient(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model)
		answer, err := client.Ask(cmd.Context(), strings.Join(args, " "), cc)
		if errors.Is(err, summarize.ErrNotAllowed) {
			return errors.New("the AI endpoint rejected ai.api_key")
		}
		if err != nil {
			return fmt.Errorf("failed to get an answer: %w", err)
		}

		fmt.Println(answer)
		return nil
	},
}

func init() {
	askCmd.Flags().String("notes", "", "notes file to give the assistant")
	askCmd.Flags().String("title", "", "video title (defaults to the notes file name)")
	askCmd.Flags().String("context", "", "anything else the assistant should know")

	rootCmd.AddCommand(askCmd)
}
