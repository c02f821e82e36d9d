// Package browser hands URLs to the platform opener.
package browser

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"
)

// Opener shows a URL to the user.
type Opener interface {
	Open(ctx context.Context, url string) error
}

// Command returns the program and arguments that open url on goos.
func Command(goos, url string) (string, []string, error) {
	switch goos {
	case "darwin":
		return "open", []string{url}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{url}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}, nil
	default:
		return "", nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}

// SystemOpener starts the platform opener without waiting for the browser.
// The opener outlives ctx; ctx only stops a launch that has not started.
type SystemOpener struct {
	// GOOS overrides runtime.GOOS; empty means the running platform.
	GOOS string
	// Start launches the command. Nil uses exec.Cmd.Start.
	Start func(cmd *exec.Cmd) error
}

// Open implements Opener.
func (o SystemOpener) Open(ctx context.Context, url string) error {
	goos := o.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	name, args, err := Command(goos, url)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	cmd := exec.Command(name, args...)
	start := o.Start
	if start == nil {
		start = (*exec.Cmd).Start
	}
	if err := start(cmd); err != nil {
		return fmt.Errorf("open %s with %s: %w", url, name, err)
	}
	return nil
}

// PrintOpener writes the URL on its own line instead of opening it.
type PrintOpener struct {
	Out io.Writer
}

// Open implements Opener.
func (o PrintOpener) Open(_ context.Context, url string) error {
	_, err := fmt.Fprintln(o.Out, url)
	return err
}
