package commands

import (
	"context"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/schoolyear/runner-image-cli/config"
	"github.com/schoolyear/runner-image-cli/lib"
	"github.com/schoolyear/runner-image-cli/schema"
	"github.com/schoolyear/runner-image-cli/static"
	"github.com/sirupsen/logrus"
)

type ImageGenerator interface {
	GenerateImage(ctx context.Context, params schema.BuildParameters, streams lib.Streams) error
}

type VMDeployer interface {
	DeployVM(ctx context.Context, params schema.DeployParameters, streams lib.Streams) error
}

type SessionVerifier interface {
	Verify(ctx context.Context, subscriptionID string, sp *schema.ServicePrincipal) (string, error)
}

type SecretStore interface {
	Get(clientID string) (*lib.CachedServicePrincipal, error)
	Set(clientID string, value lib.CachedServicePrincipal) error
}

type TranscriptUploader interface {
	Upload(ctx context.Context, upload lib.TranscriptUpload) (string, error)
}

// Runtime carries the process streams and the external collaborators of all commands.
// Nil collaborators fall back to the real implementations.
type Runtime struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Logger   *logrus.Logger
	LookPath lib.LookPathFunc
	Now      func() time.Time

	Images      ImageGenerator
	VMs         VMDeployer
	Sessions    SessionVerifier
	Secrets     SecretStore
	Transcripts TranscriptUploader

	// used by the update command
	GithubAPIBase string
	Executable    func() (string, error)
	Confirm       func(question string) bool

	// Settings are loaded from --config and --env before a command runs
	Settings config.Settings
}

func NewRuntime(stdin io.Reader, stdout, stderr io.Writer) *Runtime {
	return &Runtime{
		Stdin:         stdin,
		Stdout:        stdout,
		Stderr:        stderr,
		Logger:        lib.NewLogger(stderr),
		LookPath:      exec.LookPath,
		Now:           time.Now,
		GithubAPIBase: static.GithubAPIBase,
		Executable:    os.Executable,
	}
}

func WithRuntime(ctx context.Context, rt *Runtime) context.Context {
	return context.WithValue(ctx, static.CtxRuntimeKey, rt)
}

// RuntimeFromContext returns a runtime on the real process streams when none was attached
func RuntimeFromContext(ctx context.Context) *Runtime {
	if ctx != nil {
		if rt, ok := ctx.Value(static.CtxRuntimeKey).(*Runtime); ok {
			return rt
		}
	}
	return NewRuntime(os.Stdin, os.Stdout, os.Stderr)
}

func (rt *Runtime) Reporter() lib.Reporter {
	return lib.Reporter{Out: rt.Stdout, Err: rt.Stderr}
}

func (rt *Runtime) powerShell() string {
	return config.Or(rt.Settings.PowerShell, static.DefaultPowerShellExecutable)
}

func (rt *Runtime) helperScripts() lib.HelperScripts {
	return lib.HelperScripts{
		PowerShell:     rt.powerShell(),
		RepositoryRoot: rt.Settings.RepositoryRoot,
		Logger:         rt.Logger,
	}
}

func (rt *Runtime) imageGenerator() ImageGenerator {
	if rt.Images != nil {
		return rt.Images
	}
	return rt.helperScripts()
}

func (rt *Runtime) vmDeployer() VMDeployer {
	if rt.VMs != nil {
		return rt.VMs
	}
	return rt.helperScripts()
}

func (rt *Runtime) sessionVerifier() SessionVerifier {
	if rt.Sessions != nil {
		return rt.Sessions
	}
	return lib.AzureSession{Logger: rt.Logger}
}

func (rt *Runtime) secretStore() SecretStore {
	if rt.Secrets != nil {
		return rt.Secrets
	}
	return lib.KeyringSecrets{}
}

func (rt *Runtime) transcriptUploader() TranscriptUploader {
	if rt.Transcripts != nil {
		return rt.Transcripts
	}
	return lib.BlobTranscriptUploader{}
}

func (rt *Runtime) confirm(question string) bool {
	if rt.Confirm != nil {
		return rt.Confirm(question)
	}
	return lib.Confirm(rt.Stdin, rt.Stdout, question)
}

// tools returns the prerequisites with the configured PowerShell executable
func (rt *Runtime) tools(tools ...lib.Tool) []lib.Tool {
	out := make([]lib.Tool, len(tools))
	for i, tool := range tools {
		if tool == lib.ToolPowerShell {
			tool.Name = rt.powerShell()
		}
		out[i] = tool
	}
	return out
}
