package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/user/deepfocus-cli/pkg/timeutil"
	"github.com/user/deepfocus-cli/youtube"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search educational videos on YouTube",
	Long: `Search YouTube's Education category. Results are safe-search filtered and in English.

Pass the printed page token to --page to see the next page. Needs google.api_key or a
signed-in account.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		maxResults, _ := cmd.Flags().GetInt("max")
		page, _ := cmd.Flags().GetString("page")

		ctx := cmd.Context()
		session, err := loadSession(ctx)
		if err != nil {
			return err
		}
		client, err := youtube.NewClient(ctx, cfg.Google.APIKey, session.TokenSource())
		if errors.Is(err, youtube.ErrNoCredentials) {
			return errors.New("searching needs google.api_key or `deepfocus login`")
		}
		if err != nil {
			return err
		}

		res, err := client.Search(ctx, strings.Join(args, " "), youtube.SearchOptions{MaxResults: maxResults, PageToken: page})
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		printSearch(os.Stdout, res)
		return nil
	},
}

func printSearch(out io.Writer, res youtube.SearchResult) {
	if len(res.Videos) == 0 {
		fmt.Fprintln(out, "No videos found.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Video\tTitle\tChannel\tLength")
	fmt.Fprintln(w, "-----\t-----\t-------\t------")
	for _, v := range res.Videos {
		length := "-"
		if v.DurationSeconds > 0 {
			length = timeutil.FormatTime(float64(v.DurationSeconds))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", v.ID, truncate(v.Title, 56), truncate(v.ChannelTitle, 24), length)
	}
	w.Flush()

	fmt.Fprintf(out, "\n%d of about %d result(s).\n", len(res.Videos), res.TotalResults)
	if res.NextPageToken != "" {
		fmt.Fprintf(out, "More: --page %s\n", res.NextPageToken)
	}
}

func init() {
	searchCmd.Flags().Int("max", youtube.DefaultSearchResults, "results per page (up to 50)")
	searchCmd.Flags().String("page", "", "page token from a previous search")

	rootCmd.AddCommand(searchCmd)
}
