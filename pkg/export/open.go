package export

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Launcher hands a URI to the desktop. Delivery is fire-and-forget: there is no way to
// learn whether the target application accepted it.
type Launcher interface {
	Open(uri string) error
}

// LauncherFunc adapts a function to Launcher.
type LauncherFunc func(uri string) error

func (f LauncherFunc) Open(uri string) error { return f(uri) }

// OSLauncher opens URIs with the platform handler (xdg-open, open or rundll32).
type OSLauncher struct {
	goos string
}

func NewOSLauncher() OSLauncher {
	return OSLauncher{goos: runtime.GOOS}
}

// Open starts the platform handler and does not wait for it.
func (l OSLauncher) Open(uri string) error {
	name, args := openCommand(l.goos, uri)
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open %s: %w", name, err)
	}
	go cmd.Wait()
	return nil
}

func openCommand(goos, uri string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{uri}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", uri}
	default:
		return "xdg-open", []string{uri}
	}
}
