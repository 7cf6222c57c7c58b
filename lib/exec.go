package lib

import (
	"context"
	"encoding/json"
	"io"
	"os/exec"
	"regexp"
	"strings"

	"github.com/friendsofgo/errors"
)

var jsonParseFixRegex = regexp.MustCompile(`(?m)^.*(?:pkg_resources is deprecated as an API|__import__\('pkg_resources'\)).*\n?`)

func ExecuteAsParseAsJSON[T any](ctx context.Context, cmd string, args ...string) (t T, err error) {
	command := exec.CommandContext(ctx, cmd, args...)

	out, err := command.CombinedOutput()
	if err != nil {
		return t, errors.Wrapf(err, "failed to execute %s %s: %s", cmd, strings.Join(args, " "), string(out))
	}

	// fix for: https://github.com/azure/azure-cli/issues/31591
	// Azure CLI may print deprecation warnings in between the JSON output
	out = jsonParseFixRegex.ReplaceAll(out, []byte{})

	if err := json.Unmarshal(out, &t); err != nil {
		return t, errors.Wrapf(err, "failed to parse output of %s %s: %s", cmd, strings.Join(args, " "), string(out))
	}

	return t, nil
}

// Streams are the writers a child process reports to
type Streams struct {
	Stdout io.Writer
	Stderr io.Writer
}

const (
	stderrTailLines = 20
	stderrTailBytes = 16 * 1024
)

// ExecuteStreaming runs the command with its output forwarded to streams.
// On failure the returned error contains the last lines the command wrote to stderr.
func ExecuteStreaming(ctx context.Context, streams Streams, cmd string, args ...string) error {
	stderr := &tailWriter{limit: stderrTailBytes}

	command := exec.CommandContext(ctx, cmd, args...)
	command.Stdout = streams.Stdout
	command.Stderr = stderr
	if streams.Stderr != nil {
		command.Stderr = io.MultiWriter(streams.Stderr, stderr)
	}

	if err := command.Run(); err != nil {
		if tail := tailLines(stderr.String(), stderrTailLines); tail != "" {
			return errors.Wrap(err, tail)
		}
		return err
	}

	return nil
}

// tailWriter keeps at most limit bytes of the most recent output
type tailWriter struct {
	limit int
	buf   []byte
}

func (t *tailWriter) Write(p []byte) (int, error) {
	n := len(p)
	if len(p) > t.limit {
		p = p[len(p)-t.limit:]
	}
	if overflow := len(t.buf) + len(p) - t.limit; overflow > 0 {
		t.buf = append(t.buf[:0], t.buf[overflow:]...)
	}
	t.buf = append(t.buf, p...)
	return n, nil
}

func (t *tailWriter) String() string {
	return string(t.buf)
}

func tailLines(output string, n int) string {
	lines := strings.Split(strings.TrimRight(output, "\r\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
