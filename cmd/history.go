package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/user/deepfocus-cli/pkg/timeutil"
	"github.com/user/deepfocus-cli/progress"
	"github.com/user/deepfocus-cli/tui/forms"
	"github.com/user/deepfocus-cli/youtube"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show and manage watch history",
	Long:  `List videos you have started, most recent first, and remove entries from the history.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recently watched videos",
	Long:  `Display watch history as a table. Completed videos are hidden unless --all is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		all, _ := cmd.Flags().GetBool("all")

		ctx := cmd.Context()
		userID, err := historyUser(ctx)
		if err != nil {
			return err
		}

		store, closeStore, err := openStore(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer closeStore()

		records, err := store.List(ctx, userID, progress.ListOptions{Limit: limit, IncludeCompleted: all})
		if err != nil {
			return fmt.Errorf("failed to list history: %w", err)
		}

		printHistory(os.Stdout, records)
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <video-url-or-id>",
	Short: "Remove a video from the history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := youtube.ParseVideoID(args[0])
		if err != nil {
			return err
		}
		force, _ := cmd.Flags().GetBool("force")

		ctx := cmd.Context()
		userID, err := historyUser(ctx)
		if err != nil {
			return err
		}

		store, closeStore, err := openStore(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer closeStore()

		if !force {
			title := id
			if r, err := store.Get(ctx, userID, id); err == nil && r.VideoTitle != "" {
				title = r.VideoTitle
			}

			var confirm bool
			if err := forms.NewConfirmDeleteForm(title, &confirm).Run(); err != nil {
				return err
			}
			if !confirm {
				fmt.Println("Cancelled.")
				return nil
			}
		}

		err = store.Delete(ctx, userID, id)
		if errors.Is(err, progress.ErrNotFound) {
			return fmt.Errorf("video %s is not in your history", id)
		}
		if err != nil {
			return fmt.Errorf("failed to delete history entry: %w", err)
		}

		fmt.Printf("Removed %s from history.\n", id)
		return nil
	},
}

func printHistory(out io.Writer, records []progress.Record) {
	if len(records) == 0 {
		fmt.Fprintln(out, "No watch history yet.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Video\tTitle\tProgress\tLast watched")
	fmt.Fprintln(w, "-----\t-----\t--------\t------------")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			r.VideoID,
			truncate(r.VideoTitle, 48),
			formatProgress(r),
			r.LastWatchedAt.Local().Format("2006-01-02 15:04"),
		)
	}
	w.Flush()

	fmt.Fprintf(out, "\n%d video(s).\n", len(records))
}

func formatProgress(r progress.Record) string {
	if r.Completed {
		return "done"
	}
	if r.DurationSeconds <= 0 {
		return timeutil.FormatTime(float64(r.ProgressSeconds))
	}
	return fmt.Sprintf("%s / %s (%d%%)",
		timeutil.FormatTime(float64(r.ProgressSeconds)),
		timeutil.FormatTime(float64(r.DurationSeconds)),
		r.ProgressSeconds*100/r.DurationSeconds,
	)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

func init() {
	historyListCmd.Flags().Int("limit", progress.DefaultListLimit, "maximum number of videos")
	historyListCmd.Flags().Bool("all", false, "include completed videos")
	historyDeleteCmd.Flags().BoolP("force", "f", false, "delete without asking")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	rootCmd.AddCommand(historyCmd)
}
