package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/user/deepfocus-cli/db"
	"github.com/user/deepfocus-cli/library"
	"github.com/user/deepfocus-cli/pkg/timeutil"
	"github.com/user/deepfocus-cli/tui/forms"
	"github.com/user/deepfocus-cli/youtube"
)

var playlistCmd = &cobra.Command{
	Use:     "playlist",
	Aliases: []string{"pl"},
	Short:   "Organise videos into playlists",
	Long: `Create local playlists of videos to study in order.

Playlists can be referred to by id or by name.`,
}

// libraryCommand opens the library for the current user and runs fn.
func libraryCommand(cmd *cobra.Command, fn func(ctx context.Context, store *db.LibraryStore, userID string) error) error {
	ctx := cmd.Context()
	session, err := loadSession(ctx)
	if err != nil {
		return err
	}
	store, closeStore, err := openLibrary()
	if err != nil {
		return err
	}
	defer closeStore()
	return fn(ctx, store, libraryUser(session))
}

var playlistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List playlists, most recently changed first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return libraryCommand(cmd, func(ctx context.Context, store *db.LibraryStore, userID string) error {
			playlists, err := store.ListPlaylists(ctx, userID)
			if err != nil {
				return fmt.Errorf("failed to list playlists: %w", err)
			}
			printPlaylists(os.Stdout, playlists)
			return nil
		})
	},
}

var playlistShowCmd = &cobra.Command{
	Use:   "show <playlist>",
	Short: "Show the videos in a playlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return libraryCommand(cmd, func(ctx context.Context, store *db.LibraryStore, userID string) error {
			p, err := resolvePlaylist(ctx, store, userID, args[0])
			if err != nil {
				return err
			}
			printPlaylist(os.Stdout, p)
			return nil
		})
	},
}

var playlistCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a playlist",
	Long:  `Create a playlist. Without a name you are asked for the name and description.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		description, _ := cmd.Flags().GetString("description")
		public, _ := cmd.Flags().GetBool("public")

		var name string
		if len(args) == 1 {
			name = args[0]
		} else if err := forms.NewPlaylistForm(&name, &description, &public).Run(); err != nil {
			return err
		}

		return libraryCommand(cmd, func(ctx context.Context, store *db.LibraryStore, userID string) error {
			p, err := store.CreatePlaylist(ctx, userID, name, description, public)
			if err != nil {
				return fmt.Errorf("failed to create playlist: %w", err)
			}
			fmt.Printf("Created playlist %q (%s).\n", p.Name, p.ID)
			return nil
		})
	},
}

var playlistEditCmd = &cobra.Command{
	Use:   "edit <playlist>",
	Short: "Rename a playlist or change its description or visibility",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var u library.PlaylistUpdate
		if cmd.Flags().Changed("name") {
			name, _ := cmd.Flags().GetString("name")
			u.Name = &name
		}
		if cmd.Flags().Changed("description") {
			description, _ := cmd.Flags().GetString("description")
			u.Description = &description
		}
		if cmd.Flags().Changed("public") {
			public, _ := cmd.Flags().GetBool("public")
			u.IsPublic = &public
		}
		if u == (library.PlaylistUpdate{}) {
			return errors.New("nothing to change: pass --name, --description or --public")
		}

		return libraryCommand(cmd, func(ctx context.Context, store *db.LibraryStore, userID string) error {
			p, err := resolvePlaylist(ctx, store, userID, args[0])
			if err != nil {
				return err
			}
			if p, err = store.UpdatePlaylist(ctx, userID, p.ID, u); err != nil {
				return fmt.Errorf("failed to update playlist: %w", err)
			}
			fmt.Printf("Updated playlist %q.\n", p.Name)
			return nil
		})
	},
}

var playlistDeleteCmd = &cobra.Command{
	Use:   "delete <playlist>",
	Short: "Delete a playlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		return libraryCommand(cmd, func(ctx context.Context, store *db.LibraryStore, userID string) error {
			p, err := resolvePlaylist(ctx, store, userID, args[0])
			if err != nil {
				return err
			}
			if !force {
				var confirm bool
				question := fmt.Sprintf("Delete playlist %q?", p.Name)
				detail := fmt.Sprintf("Its %d video(s) stay in your history.", p.VideoCount)
				if err := forms.NewConfirmForm(question, detail, &confirm).Run(); err != nil {
					return err
				}
				if !confirm {
					fmt.Println("Cancelled.")
					return nil
				}
			}
			if err := store.DeletePlaylist(ctx, userID, p.ID); err != nil {
				return fmt.Errorf("failed to delete playlist: %w", err)
			}
			fmt.Printf("Deleted playlist %q.\n", p.Name)
			return nil
		})
	},
}

var playlistAddCmd = &cobra.Command{
	Use:   "add <playlist> <video-url-or-id>",
	Short: "Append a video to a playlist",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := youtube.ParseVideoID(args[1])
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
		userID := libraryUser(session)

		p, err := resolvePlaylist(ctx, store, userID, args[0])
		if err != nil {
			return err
		}
		added, err := store.AddPlaylistVideo(ctx, userID, p.ID, library.PlaylistVideo{
			VideoID:         v.ID,
			Title:           v.Title,
			Thumbnail:       v.Thumbnail,
			ChannelTitle:    v.ChannelTitle,
			DurationSeconds: v.DurationSeconds,
		})
		if errors.Is(err, library.ErrExists) {
			return fmt.Errorf("%s is already in %q", id, p.Name)
		}
		if err != nil {
			return fmt.Errorf("failed to add video: %w", err)
		}
		fmt.Printf("Added %q to %q at position %d.\n", added.Title, p.Name, added.Position+1)
		return nil
	},
}

var playlistRemoveCmd = &cobra.Command{
	Use:   "remove <playlist> <video-url-or-id>",
	Short: "Remove a video from a playlist",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := youtube.ParseVideoID(args[1])
		if err != nil {
			return err
		}
		return libraryCommand(cmd, func(ctx context.Context, store *db.LibraryStore, userID string) error {
			p, err := resolvePlaylist(ctx, store, userID, args[0])
			if err != nil {
				return err
			}
			err = store.RemovePlaylistVideo(ctx, userID, p.ID, id)
			if errors.Is(err, library.ErrNotFound) {
				return fmt.Errorf("%s is not in %q", id, p.Name)
			}
			if err != nil {
				return fmt.Errorf("failed to remove video: %w", err)
			}
			fmt.Printf("Removed %s from %q.\n", id, p.Name)
			return nil
		})
	},
}

// resolvePlaylist finds a playlist by id, then by case-insensitive name.
func resolvePlaylist(ctx context.Context, store *db.LibraryStore, userID, ref string) (library.Playlist, error) {
	p, err := store.GetPlaylist(ctx, userID, ref)
	if err == nil || !errors.Is(err, library.ErrNotFound) {
		return p, err
	}

	playlists, err := store.ListPlaylists(ctx, userID)
	if err != nil {
		return library.Playlist{}, err
	}
	var matches []library.Playlist
	for _, p := range playlists {
		if strings.EqualFold(p.Name, strings.TrimSpace(ref)) {
			matches = append(matches, p)
		}
	}
	switch len(matches) {
	case 0:
		return library.Playlist{}, fmt.Errorf("no playlist named %q: %w", ref, library.ErrNotFound)
	case 1:
		return store.GetPlaylist(ctx, userID, matches[0].ID)
	default:
		return library.Playlist{}, fmt.Errorf("%d playlists are named %q, use the id instead", len(matches), ref)
	}
}

func printPlaylists(out io.Writer, playlists []library.Playlist) {
	if len(playlists) == 0 {
		fmt.Fprintln(out, "No playlists yet. Create one with `deepfocus playlist create`.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tName\tVideos\tUpdated")
	fmt.Fprintln(w, "--\t----\t------\t-------")
	for _, p := range playlists {
		name := truncate(p.Name, 40)
		if p.IsPublic {
			name += " (public)"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", p.ID, name, p.VideoCount, p.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	w.Flush()
}

func printPlaylist(out io.Writer, p library.Playlist) {
	fmt.Fprintf(out, "%s\n", p.Name)
	if p.Description != "" {
		fmt.Fprintf(out, "%s\n", p.Description)
	}
	fmt.Fprintln(out)
	if len(p.Videos) == 0 {
		fmt.Fprintln(out, "No videos yet.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	total := 0
	for _, v := range p.Videos {
		length := "-"
		if v.DurationSeconds > 0 {
			length = timeutil.FormatTime(float64(v.DurationSeconds))
			total += v.DurationSeconds
		}
		fmt.Fprintf(w, "%d.\t%s\t%s\t%s\n", v.Position+1, v.VideoID, truncate(v.Title, 56), length)
	}
	w.Flush()

	fmt.Fprintf(out, "\n%d video(s)", len(p.Videos))
	if total > 0 {
		fmt.Fprintf(out, ", %s in total", timeutil.FormatTime(float64(total)))
	}
	fmt.Fprintln(out, ".")
}

func init() {
	playlistCreateCmd.Flags().String("description", "", "playlist description")
	playlistCreateCmd.Flags().Bool("public", false, "mark the playlist public")
	playlistEditCmd.Flags().String("name", "", "new name")
	playlistEditCmd.Flags().String("description", "", "new description")
	playlistEditCmd.Flags().Bool("public", false, "mark the playlist public (--public=false to unset)")
	playlistDeleteCmd.Flags().BoolP("force", "f", false, "delete without asking")

	playlistCmd.AddCommand(playlistListCmd, playlistShowCmd, playlistCreateCmd, playlistEditCmd,
		playlistDeleteCmd, playlistAddCmd, playlistRemoveCmd)
	rootCmd.AddCommand(playlistCmd)
}
