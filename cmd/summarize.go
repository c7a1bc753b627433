package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/deepfocus-cli/summarize"
	"github.com/user/deepfocus-cli/tui/forms"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <notes.md>",
	Short: "Generate a study aid from exported notes",
	Long: `Send a notes file (for example one exported to Obsidian or Drive) to the AI endpoint
and print a summary, key points, review questions or flashcards.

Without --kind you are asked which one to generate.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.AI.APIKey == "" {
			return errors.New("ai.api_key is not configured (or set DEEPFOCUS_AI_API_KEY)")
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read notes: %w", err)
		}

		kindFlag, _ := cmd.Flags().GetString("kind")
		title, _ := cmd.Flags().GetString("title")
		if title == "" {
			title = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		}

		var kind summarize.Kind
		if kindFlag != "" {
			if kind, err = summarize.ParseKind(kindFlag); err != nil {
				return err
			}
		} else {
			kind = summarize.KindSummary
			if err := forms.NewKindForm(&kind).Run(); err != nil {
				return err
			}
		}

		client := summarize.NewClient(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model)
		out, err := client.Generate(cmd.Context(), kind, title, string(data))
		if err != nil {
			return fmt.Errorf("failed to generate %s: %w", kind, err)
		}

		fmt.Println(out)
		return nil
	},
}

func init() {
	summarizeCmd.Flags().String("kind", "", "summary, keypoints, questions or flashcards")
	summarizeCmd.Flags().String("title", "", "video title given to the model (defaults to the file name)")

	rootCmd.AddCommand(summarizeCmd)
}
