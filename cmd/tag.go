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
	"github.com/user/deepfocus-cli/tui/forms"
	"github.com/user/deepfocus-cli/youtube"
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Label videos, playlists and channels",
	Long: `Tags are coloured labels for videos, playlists and channels. A tag is referred to by
name or id; "tag add" creates the tag if it does not exist yet.`,
}

var tagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tags with their most recent items",
	RunE: func(cmd *cobra.Command, args []string) error {
		return libraryCommand(cmd, func(ctx context.Context, store *db.LibraryStore, userID string) error {
			tags, err := store.ListTags(ctx, userID)
			if err != nil {
				return fmt.Errorf("failed to list tags: %w", err)
			}
			printTags(os.Stdout, tags)
			return nil
		})
	},
}

var tagCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		color, _ := cmd.Flags().GetString("color")
		return libraryCommand(cmd, func(ctx context.Context, store *db.LibraryStore, userID string) error {
			t, err := store.CreateTag(ctx, userID, args[0], color)
			if errors.Is(err, library.ErrExists) {
				return fmt.Errorf("tag %q already exists", strings.TrimSpace(args[0]))
			}
			if err != nil {
				return fmt.Errorf("failed to create tag: %w", err)
			}
			fmt.Printf("Created tag %q (%s).\n", t.Name, t.Color)
			return nil
		})
	},
}

var tagEditCmd = &cobra.Command{
	Use:   "edit <tag>",
	Short: "Rename a tag or change its colour",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var u library.TagUpdate
		if cmd.Flags().Changed("name") {
			name, _ := cmd.Flags().GetString("name")
			u.Name = &name
		}
		if cmd.Flags().Changed("color") {
			color, _ := cmd.Flags().GetString("color")
			u.Color = &color
		}
		if u == (library.TagUpdate{}) {
			return errors.New("nothing to change: pass --name or --color")
		}

		return libraryCommand(cmd, func(ctx context.Context, store *db.LibraryStore, userID string) error {
			t, err := resolveTag(ctx, store, userID, args[0])
			if err != nil {
				return err
			}
			t, err = store.UpdateTag(ctx, userID, t.ID, u)
			if errors.Is(err, library.ErrExists) {
				return fmt.Errorf("another tag is already named %q", strings.TrimSpace(*u.Name))
			}
			if err != nil {
				return fmt.Errorf("failed to update tag: %w", err)
			}
			fmt.Printf("Updated tag %q (%s).\n", t.Name, t.Color)
			return nil
		})
	},
}

var tagDeleteCmd = &cobra.Command{
	Use:   "delete <tag>",
	Short: "Delete a tag and detach it from every item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		return libraryCommand(cmd, func(ctx context.Context, store *db.LibraryStore, userID string) error {
			t, err := resolveTag(ctx, store, userID, args[0])
			if err != nil {
				return err
			}
			if !force {
				var confirm bool
				question := fmt.Sprintf("Delete tag %q?", t.Name)
				detail := fmt.Sprintf("It is attached to %d item(s).", t.ItemCount)
				if err := forms.NewConfirmForm(question, detail, &confirm).Run(); err != nil {
					return err
				}
				if !confirm {
					fmt.Println("Cancelled.")
					return nil
				}
			}
			if err := store.DeleteTag(ctx, userID, t.ID); err != nil {
				return fmt.Errorf("failed to delete tag: %w", err)
			}
			fmt.Printf("Deleted tag %q.\n", t.Name)
			return nil
		})
	},
}

var tagAddCmd = &cobra.Command{
	Use:   "add <tag> <item>",
	Short: "Attach a tag to a video, playlist or channel",
	Long: `Attach a tag to an item. The item is a video URL or id unless --type says otherwise;
playlists may be given by name. Video titles are looked up when possible.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		itemType, title, err := tagItemFlags(cmd)
		if err != nil {
			return err
		}

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
		userID := libraryUser(session)

		item := library.TaggedItem{ItemType: itemType, Title: title}
		switch itemType {
		case library.ItemVideo:
			id, err := youtube.ParseVideoID(args[1])
			if err != nil {
				return err
			}
			v := lookupVideo(ctx, id, session, logger)
			item.ItemID, item.Thumbnail = id, v.Thumbnail
			if item.Title == "" {
				item.Title = v.Title
			}
		case library.ItemPlaylist:
			p, err := resolvePlaylist(ctx, store, userID, args[1])
			if err != nil {
				return err
			}
			item.ItemID, item.Thumbnail = p.ID, p.Thumbnail
			if item.Title == "" {
				item.Title = p.Name
			}
		default:
			item.ItemID = args[1]
		}

		t, err := store.TagByName(ctx, userID, strings.TrimSpace(args[0]))
		if errors.Is(err, library.ErrNotFound) {
			t, err = store.CreateTag(ctx, userID, args[0], "")
		}
		if err != nil {
			return fmt.Errorf("failed to find tag: %w", err)
		}
		item.TagID = t.ID

		_, err = store.TagItem(ctx, userID, item)
		if errors.Is(err, library.ErrExists) {
			return fmt.Errorf("%s is already tagged %q", item.ItemID, t.Name)
		}
		if err != nil {
			return fmt.Errorf("failed to tag item: %w", err)
		}
		fmt.Printf("Tagged %s %q with %q.\n", item.ItemType, item.Title, t.Name)
		return nil
	},
}

var tagRemoveCmd = &cobra.Command{
	Use:   "remove <tag> <item>",
	Short: "Detach a tag from an item",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		itemType, _, err := tagItemFlags(cmd)
		if err != nil {
			return err
		}
		return libraryCommand(cmd, func(ctx context.Context, store *db.LibraryStore, userID string) error {
			t, err := resolveTag(ctx, store, userID, args[0])
			if err != nil {
				return err
			}
			itemID, err := itemRef(ctx, store, userID, itemType, args[1])
			if err != nil {
				return err
			}
			err = store.UntagItem(ctx, userID, t.ID, itemID, itemType)
			if errors.Is(err, library.ErrNotFound) {
				return fmt.Errorf("%s is not tagged %q", itemID, t.Name)
			}
			if err != nil {
				return fmt.Errorf("failed to untag item: %w", err)
			}
			fmt.Printf("Removed tag %q from %s.\n", t.Name, itemID)
			return nil
		})
	},
}

var tagShowCmd = &cobra.Command{
	Use:   "show <item>",
	Short: "Show the tags on an item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		itemType, _, err := tagItemFlags(cmd)
		if err != nil {
			return err
		}
		return libraryCommand(cmd, func(ctx context.Context, store *db.LibraryStore, userID string) error {
			itemID, err := itemRef(ctx, store, userID, itemType, args[0])
			if err != nil {
				return err
			}
			tags, err := store.TagsForItem(ctx, userID, itemID, itemType)
			if err != nil {
				return fmt.Errorf("failed to read tags: %w", err)
			}
			if len(tags) == 0 {
				fmt.Println("No tags.")
				return nil
			}
			names := make([]string, 0, len(tags))
			for _, t := range tags {
				names = append(names, t.Name)
			}
			fmt.Println(strings.Join(names, ", "))
			return nil
		})
	},
}

func tagItemFlags(cmd *cobra.Command) (library.ItemType, string, error) {
	typeFlag, _ := cmd.Flags().GetString("type")
	itemType, err := library.ParseItemType(typeFlag)
	if err != nil {
		return "", "", err
	}
	title, _ := cmd.Flags().GetString("title")
	return itemType, title, nil
}

// itemRef turns a command-line reference into the stored item id.
func itemRef(ctx context.Context, store *db.LibraryStore, userID string, itemType library.ItemType, ref string) (string, error) {
	switch itemType {
	case library.ItemVideo:
		return youtube.ParseVideoID(ref)
	case library.ItemPlaylist:
		p, err := resolvePlaylist(ctx, store, userID, ref)
		if err != nil {
			return "", err
		}
		return p.ID, nil
	default:
		return ref, nil
	}
}

// resolveTag finds a tag by exact name, then by id.
func resolveTag(ctx context.Context, store *db.LibraryStore, userID, ref string) (library.Tag, error) {
	t, err := store.TagByName(ctx, userID, strings.TrimSpace(ref))
	if errors.Is(err, library.ErrNotFound) {
		t, err = store.GetTag(ctx, userID, ref)
	}
	if errors.Is(err, library.ErrNotFound) {
		return library.Tag{}, fmt.Errorf("no tag named %q: %w", ref, library.ErrNotFound)
	}
	return t, err
}

func printTags(out io.Writer, tags []library.Tag) {
	if len(tags) == 0 {
		fmt.Fprintln(out, "No tags yet. Tag a video with `deepfocus tag add <tag> <video>`.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Tag\tColour\tItems\tRecent")
	fmt.Fprintln(w, "---\t------\t-----\t------")
	for _, t := range tags {
		recent := make([]string, 0, len(t.Items))
		for _, it := range t.Items {
			label := it.Title
			if label == "" {
				label = it.ItemID
			}
			recent = append(recent, truncate(label, 24))
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", t.Name, t.Color, t.ItemCount, strings.Join(recent, ", "))
	}
	w.Flush()
}

func init() {
	tagCreateCmd.Flags().String("color", library.DefaultTagColor, "colour as #rrggbb")
	tagEditCmd.Flags().String("name", "", "new name")
	tagEditCmd.Flags().String("color", "", "new colour as #rrggbb")
	tagDeleteCmd.Flags().BoolP("force", "f", false, "delete without asking")
	for _, c := range []*cobra.Command{tagAddCmd, tagRemoveCmd, tagShowCmd} {
		c.Flags().String("type", string(library.ItemVideo), "item type: video, playlist or channel")
	}
	tagAddCmd.Flags().String("title", "", "label stored with the item (defaults to the video or playlist title)")

	tagCmd.AddCommand(tagListCmd, tagCreateCmd, tagEditCmd, tagDeleteCmd, tagAddCmd, tagRemoveCmd, tagShowCmd)
	rootCmd.AddCommand(tagCmd)
}
