package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/user/deepfocus-cli/db"
	"github.com/user/deepfocus-cli/library"
	"github.com/user/deepfocus-cli/pkg/timeutil"
	"github.com/user/deepfocus-cli/youtube"
)

var laterCmd = &cobra.Command{
	Use:   "later",
	Short: "Keep a list of videos to watch later",
	Long: `Save videos to watch later. The list is kept in the local database; YouTube's own
Watch Later playlist is not reachable through the Data API.`,
}

var laterListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved videos, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return libraryCommand(cmd, func(ctx context.Context, store *db.LibraryStore, userID string) error {
			items, err := store.ListWatchLater(ctx, userID)
			if err != nil {
				return fmt.Errorf("failed to list watch later: %w", err)
			}
			printWatchLater(os.Stdout, items)
			return nil
		})
	},
}

var laterAddCmd = &cobra.Command{
	Use:   "add <video-url-or-id>",
	Short: "Save a video for later",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := youtube.ParseVideoID(args[0])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		session, err := loadSession(ctx)
		if err != nil {
			return err
		}
		v := lookupVideo(ctx, id, session, logger)

		store, closeStore, err := openLibrary()
		if err != nil {
			return err
		}
		defer closeStore()

		_, err = store.AddWatchLater(ctx, libraryUser(session), library.WatchLaterItem{
			VideoID:         v.ID,
			Title:           v.Title,
			Thumbnail:       v.Thumbnail,
			ChannelTitle:    v.ChannelTitle,
			DurationSeconds: v.DurationSeconds,
		})
		if errors.Is(err, library.ErrExists) {
			return fmt.Errorf("%s is already saved", id)
		}
		if err != nil {
			return fmt.Errorf("failed to save video: %w", err)
		}
		fmt.Printf("Saved %q for later.\n", v.Title)
		return nil
	},
}

var laterRemoveCmd = &cobra.Command{
	Use:   "remove <video-url-or-id>",
	Short: "Remove a video from the list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := youtube.ParseVideoID(args[0])
		if err != nil {
			return err
		}
		return libraryCommand(cmd, func(ctx context.Context, store *db.LibraryStore, userID string) error {
			err := store.RemoveWatchLater(ctx, userID, id)
			if errors.Is(err, library.ErrNotFound) {
				return fmt.Errorf("%s is not in your watch-later list", id)
			}
			if err != nil {
				return fmt.Errorf("failed to remove video: %w", err)
			}
			fmt.Printf("Removed %s from watch later.\n", id)
			return nil
		})
	},
}

func printWatchLater(out io.Writer, items []library.WatchLaterItem) {
	if len(items) == 0 {
		fmt.Fprintln(out, "Nothing saved for later.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Video\tTitle\tChannel\tLength\tAdded")
	fmt.Fprintln(w, "-----\t-----\t-------\t------\t-----")
	for _, it := range items {
		length := "-"
		if it.DurationSeconds > 0 {
			length = timeutil.FormatTime(float64(it.DurationSeconds))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", it.VideoID, truncate(it.Title, 48), truncate(it.ChannelTitle, 24),
			length, it.AddedAt.Local().Format("2006-01-02"))
	}
	w.Flush()

	fmt.Fprintf(out, "\n%d video(s).\n", len(items))
}

func init() {
	laterCmd.AddCommand(laterListCmd, laterAddCmd, laterRemoveCmd)
	rootCmd.AddCommand(laterCmd)
}
