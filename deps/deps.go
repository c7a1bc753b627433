package deps

import (
	"fmt"
	"os/exec"
)

const (
	MpvInstallURL   = "https://mpv.io/installation/"
	YtDlpInstallURL = "https://github.com/yt-dlp/yt-dlp#installation"
)

// DependencyError contains information about a missing dependency
type DependencyError struct {
	Name       string
	InstallURL string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s not found. Install from: %s", e.Name, e.InstallURL)
}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// CheckMpv checks if mpv is installed and available in PATH
func CheckMpv() error {
	return check("mpv", MpvInstallURL)
}

// CheckYtDlp checks if yt-dlp, which mpv uses to resolve YouTube URLs, is available.
func CheckYtDlp() error {
	return check("yt-dlp", YtDlpInstallURL)
}

// CheckAll checks all dependencies and returns a slice of errors for missing ones
func CheckAll() []error {
	var errs []error
	for _, fn := range []func() error{CheckMpv, CheckYtDlp} {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func check(name, url string) error {
	if _, err := lookPath(name); err != nil {
		return &DependencyError{Name: name, InstallURL: url}
	}
	return nil
}
