package commands

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/friendsofgo/errors"
	"github.com/schoolyear/runner-image-cli/config"
	"github.com/schoolyear/runner-image-cli/lib"
	"github.com/schoolyear/runner-image-cli/schema"
	"github.com/urfave/cli/v2"
)

func loginCheckFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "skip-login-check",
			Usage: "Do not verify the Azure session before invoking the helper script",
		},
		&cli.StringFlag{
			Name:    "log-uri",
			Usage:   "Upload a transcript of the helper script output to this blob container. E.g. \"https://<storageaccount>.blob.core.windows.net/<containername>[/prefix]\"",
			EnvVars: []string{config.EnvLogURI},
		},
	}
}

// verifySession makes sure the helper script will be able to authenticate before it starts
func (rt *Runtime) verifySession(ctx context.Context, subscriptionID string, sp *schema.ServicePrincipal) error {
	reporter := rt.Reporter()
	reporter.Info("Checking Azure session...")

	name, err := rt.sessionVerifier().Verify(ctx, subscriptionID, sp)
	if err != nil {
		return errors.Wrap(err, "Azure session check failed. Use --skip-login-check to skip this check")
	}

	reporter.Info("Authenticated as %s", name)
	return nil
}

// runCollaborator streams the collaborator output to the user and uploads a transcript when logURI is set.
// A failed upload never changes the outcome of the command.
func (rt *Runtime) runCollaborator(ctx context.Context, command, logURI string, sp *schema.ServicePrincipal, run func(ctx context.Context, streams lib.Streams) error) error {
	streams := lib.Streams{Stdout: rt.Stdout, Stderr: rt.Stderr}

	var transcript *lockedBuffer
	if logURI != "" {
		transcript = &lockedBuffer{}
		streams = lib.Streams{
			Stdout: io.MultiWriter(rt.Stdout, transcript),
			Stderr: io.MultiWriter(rt.Stderr, transcript),
		}
	}

	runErr := run(ctx, streams)

	if transcript != nil {
		rt.uploadTranscript(ctx, command, logURI, sp, transcript.Bytes())
	}

	return runErr
}

func (rt *Runtime) uploadTranscript(ctx context.Context, command, logURI string, sp *schema.ServicePrincipal, data []byte) {
	reporter := rt.Reporter()

	blobURL, err := rt.transcriptUploader().Upload(ctx, lib.TranscriptUpload{
		URI:              logURI,
		Name:             lib.TranscriptBlobName(command, rt.Now()),
		Data:             data,
		ServicePrincipal: sp,
	})
	if err != nil {
		reporter.Warn("Failed to upload the transcript: %s", err.Error())
		return
	}

	reporter.Info("Transcript uploaded to %s", blobURL)
}

// lockedBuffer is written to from both the stdout and stderr copy goroutines of the child process
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.Write(p)
}

func (l *lockedBuffer) Bytes() []byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	return bytes.Clone(l.buf.Bytes())
}
