package azuread

import (
	"os"
	"os/exec"
	"runtime"

	"github.com/go-playground/errors/v5"
)

// Opener launches the system browser for interactive flows. It stands in for
// the browser environment checks a single-page app gets for free.
type Opener interface {
	// Available reports whether a browser can be opened in this environment.
	Available() bool
	// Open navigates the browser to url without waiting for it to exit.
	Open(url string) error
}

var _ Opener = systemOpener{}

type systemOpener struct{}

func (systemOpener) Available() bool {
	switch runtime.GOOS {
	case "darwin", "windows":
		return true
	default:
		return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
	}
}

func (systemOpener) Open(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}

	if err := cmd.Start(); err != nil {
		return errors.Wrap(err, "exec.Cmd.Start()")
	}

	return nil
}
