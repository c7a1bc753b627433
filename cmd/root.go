package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/user/deepfocus-cli/config"
	"github.com/user/deepfocus-cli/deps"
	"github.com/user/deepfocus-cli/server"
)

var Version = "0.1.0"

var (
	configPath string
	logLevel   string

	cfg    *config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "deepfocus",
	Short: "Watch YouTube lectures and take timestamped notes",
	Long: `deepfocus plays a YouTube video in mpv and gives you a terminal notebook next to it.

Features:
  - Timestamped notes you can jump back to
  - Watch progress saved every 10 seconds and on exit
  - Export notes to Obsidian or Google Drive
  - AI summaries, key points, questions and flashcards from your notes`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if logLevel != "" {
			loaded.Logging.Level = logLevel
		}
		cfg = loaded
		logger = config.NewLogger(cfg.Logging, os.Stderr)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("deepfocus version %s\n", Version)
	},
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check system dependencies",
	Long:  `Check that mpv and yt-dlp are installed and available. mpv plays the video and uses yt-dlp to stream from YouTube.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Checking dependencies...")
		fmt.Println()

		for _, c := range []struct {
			name  string
			check func() error
		}{
			{"mpv", deps.CheckMpv},
			{"yt-dlp", deps.CheckYtDlp},
		} {
			if err := c.check(); err != nil {
				fmt.Printf("✗ %s: NOT FOUND\n", c.name)
				if depErr, ok := err.(*deps.DependencyError); ok {
					fmt.Printf("  Install from: %s\n", depErr.InstallURL)
				}
			} else {
				fmt.Printf("✓ %s: OK\n", c.name)
			}
		}

		fmt.Println()
		if len(deps.CheckAll()) == 0 {
			fmt.Println("All dependencies are installed!")
		} else {
			fmt.Println("Some dependencies are missing. Please install them to watch videos.")
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(doctorCmd)

	server.Version = Version
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
