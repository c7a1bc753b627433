package mpv

import (
	"fmt"
	"os/exec"

	"github.com/user/deepfocus-cli/deps"
)

// LaunchOptions configures a new mpv process.
type LaunchOptions struct {
	// SocketPath is the IPC socket; DefaultSocketPath when empty.
	SocketPath string
	// Captions loads and shows subtitles (including YouTube auto captions). mpv reads
	// this only at startup, so toggling it requires a relaunch.
	Captions bool
	// CaptionLang is the preferred subtitle language.
	CaptionLang string
	// StartSeconds resumes playback at a position.
	StartSeconds float64
}

// LaunchMpv starts mpv paused on target (a URL or file) with the IPC socket enabled.
// It checks that mpv and yt-dlp are installed first.
func LaunchMpv(target string, opts LaunchOptions) (*exec.Cmd, error) {
	if err := deps.CheckMpv(); err != nil {
		return nil, err
	}
	if err := deps.CheckYtDlp(); err != nil {
		return nil, err
	}

	cmd := exec.Command("mpv", launchArgs(target, opts)...)
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return cmd, nil
}

func launchArgs(target string, opts LaunchOptions) []string {
	socket := opts.SocketPath
	if socket == "" {
		socket = DefaultSocketPath
	}
	lang := opts.CaptionLang
	if lang == "" {
		lang = "en"
	}

	args := []string{
		"--input-ipc-server=" + socket,
		"--pause",
		"--keep-open=yes",
		"--force-window=yes",
	}
	if opts.Captions {
		args = append(args,
			"--sub-visibility=yes",
			"--slang="+lang,
			"--ytdl-raw-options=write-auto-subs=,sub-langs="+lang,
		)
	} else {
		args = append(args, "--sub-visibility=no", "--sid=no")
	}
	if opts.StartSeconds > 0 {
		args = append(args, fmt.Sprintf("--start=%.0f", opts.StartSeconds))
	}
	return append(args, target)
}
