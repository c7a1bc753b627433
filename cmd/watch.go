package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/user/deepfocus-cli/auth"
	"github.com/user/deepfocus-cli/config"
	"github.com/user/deepfocus-cli/mpv"
	"github.com/user/deepfocus-cli/pkg/export"
	"github.com/user/deepfocus-cli/pkg/export/drive"
	"github.com/user/deepfocus-cli/pkg/timeutil"
	"github.com/user/deepfocus-cli/progress"
	"github.com/user/deepfocus-cli/summarize"
	"github.com/user/deepfocus-cli/tui"
	"github.com/user/deepfocus-cli/watch"
	"github.com/user/deepfocus-cli/youtube"
)

const (
	metadataTimeout = 10 * time.Second
	closeTimeout    = 10 * time.Second
)

var watchCmd = &cobra.Command{
	Use:   "watch <video-url-or-id>",
	Short: "Watch a YouTube video and take notes",
	Long: `Open a YouTube video in mpv and start a note-taking session in the terminal.

Progress is saved every 10 seconds while you are signed in and once more when you quit.
Videos you have partly watched resume where you left off unless --from-start or --start
is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := youtube.ParseVideoID(args[0])
		if err != nil {
			return err
		}
		noResume, _ := cmd.Flags().GetBool("from-start")
		startFlag, _ := cmd.Flags().GetString("start")
		start := 0.0
		if startFlag != "" {
			if start, err = timeutil.ParseTimeToSeconds(startFlag); err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}
			noResume = true
		}
		captions, _ := cmd.Flags().GetBool("captions")
		if !cmd.Flags().Changed("captions") {
			captions = cfg.Player.Captions
		}

		// The screen owns the terminal from here on, so logs go to a file.
		logFile, err := config.OpenLogFile()
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer logFile.Close()
		log := config.NewLogger(config.LoggingConfig{Level: cfg.Logging.Level}, logFile)

		ctx := cmd.Context()
		session, err := loadSession(ctx)
		if err != nil {
			return err
		}

		store, closeStore, err := openStore(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer closeStore()

		var saver progress.Auth = session
		if cfg.Store.Driver == config.StoreHTTP {
			saver = auth.Static(remoteUser)
		} else if !session.Authenticated() {
			fmt.Println("Not signed in: progress will not be saved. Run `deepfocus login` to enable it.")
		}

		video := fetchVideo(ctx, id, session, log)

		if !noResume && saver.Authenticated() {
			start = resumePosition(ctx, store, saver.UserID(), id)
		}

		var driveExporter *drive.Exporter
		if ts := session.TokenSource(); ts != nil {
			files, err := drive.NewGoogleFiles(ctx, ts)
			if err != nil {
				log.Warn().Err(err).Msg("drive export unavailable")
			} else {
				driveExporter = drive.NewExporter(files, log)
			}
		}

		var ai *summarize.Client
		if cfg.AI.APIKey != "" {
			ai = summarize.NewClient(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model)
		}

		fmt.Printf("Opening video: %s\n", video.Title)
		process, err := mpv.LaunchMpv(youtube.WatchURL(id), mpv.LaunchOptions{
			SocketPath:   cfg.Player.SocketPath,
			Captions:     captions,
			CaptionLang:  cfg.Player.CaptionLang,
			StartSeconds: start,
		})
		if err != nil {
			return fmt.Errorf("failed to launch mpv: %w", err)
		}
		defer func() {
			if process.Process != nil {
				process.Process.Kill()
				process.Wait()
			}
		}()

		client := mpv.NewClient(cfg.Player.SocketPath)
		// Wait up to 5 seconds for the socket.
		if err := client.ConnectWithRetry(50, 100*time.Millisecond); err != nil {
			return fmt.Errorf("failed to connect to mpv: %w", err)
		}
		defer client.Close()

		ws := watch.New(video, watch.Deps{
			Player:     mpv.NewPlayer(client),
			Store:      store,
			Auth:       saver,
			Drive:      driveExporter,
			Summarizer: ai,
			Launcher:   export.NewOSLauncher(),
			Logger:     log,
			Captions:   captions,
		})

		runErr := tui.Run(ws, tui.Options{
			User:      session.Email(),
			AIEnabled: ai != nil,
			Logger:    log,
		})

		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
		defer cancel()
		if err := ws.Close(closeCtx); err != nil {
			log.Warn().Err(err).Msg("final progress save failed")
		}

		return runErr
	},
}

// fetchVideo looks up title and channel for the watch session.
func fetchVideo(ctx context.Context, id string, session *auth.Session, log zerolog.Logger) progress.Video {
	v := lookupVideo(ctx, id, session, log)
	return progress.Video{ID: id, Title: v.Title, Thumbnail: v.Thumbnail, ChannelName: v.ChannelTitle}
}

// lookupVideo fetches metadata. Without an API key or token the id stands in for the
// title and the thumbnail is derived from the id.
func lookupVideo(ctx context.Context, id string, session *auth.Session, log zerolog.Logger) youtube.Video {
	fallback := youtube.Video{ID: id, Title: id, Thumbnail: youtube.ThumbnailURL(id)}

	ctx, cancel := context.WithTimeout(ctx, metadataTimeout)
	defer cancel()

	client, err := youtube.NewClient(ctx, cfg.Google.APIKey, session.TokenSource())
	if errors.Is(err, youtube.ErrNoCredentials) {
		return fallback
	}
	if err != nil {
		log.Warn().Err(err).Msg("youtube client unavailable")
		return fallback
	}

	v, err := client.Video(ctx, id)
	if err != nil {
		log.Warn().Err(err).Str("video_id", id).Msg("failed to fetch video metadata")
		return fallback
	}
	if v.Thumbnail == "" {
		v.Thumbnail = fallback.Thumbnail
	}
	if v.Title == "" {
		v.Title = id
	}
	return v
}

// resumePosition returns the saved position of an unfinished video, or 0.
func resumePosition(ctx context.Context, store progress.Store, userID, videoID string) float64 {
	r, err := store.Get(ctx, userID, videoID)
	if err != nil {
		if !errors.Is(err, progress.ErrNotFound) {
			logger.Debug().Err(err).Msg("could not read watch history")
		}
		return 0
	}
	if r.Completed {
		return 0
	}
	return float64(r.ProgressSeconds)
}

func init() {
	watchCmd.Flags().Bool("from-start", false, "ignore saved progress and start at 0:00")
	watchCmd.Flags().String("start", "", "start position (H:MM:SS, MM:SS or seconds)")
	watchCmd.Flags().Bool("captions", true, "show captions (defaults to player.captions)")

	rootCmd.AddCommand(watchCmd)
}
