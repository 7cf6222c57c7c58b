package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/friendsofgo/errors"
	"github.com/schoolyear/runner-image-cli/commands"
	"github.com/schoolyear/runner-image-cli/config"
	"github.com/schoolyear/runner-image-cli/lib"
	"github.com/schoolyear/runner-image-cli/schema"
	"github.com/schoolyear/runner-image-cli/static"
	"github.com/stretchr/testify/require"
)

type fakeImages struct {
	calls  []schema.BuildParameters
	output string
	err    error
}

func (f *fakeImages) GenerateImage(_ context.Context, params schema.BuildParameters, streams lib.Streams) error {
	f.calls = append(f.calls, params)
	if f.output != "" {
		_, _ = fmt.Fprintln(streams.Stdout, f.output)
	}
	if f.err != nil {
		_, _ = fmt.Fprintln(streams.Stderr, f.err.Error())
	}
	return f.err
}

type fakeVMs struct {
	calls []schema.DeployParameters
	err   error
}

func (f *fakeVMs) DeployVM(_ context.Context, params schema.DeployParameters, _ lib.Streams) error {
	f.calls = append(f.calls, params)
	return f.err
}

type sessionCall struct {
	subscriptionID string
	sp             *schema.ServicePrincipal
}

type fakeSessions struct {
	calls []sessionCall
	err   error
}

func (f *fakeSessions) Verify(_ context.Context, subscriptionID string, sp *schema.ServicePrincipal) (string, error) {
	f.calls = append(f.calls, sessionCall{subscriptionID: subscriptionID, sp: sp})
	if f.err != nil {
		return "", f.err
	}
	return "Test Subscription", nil
}

type fakeSecrets map[string]lib.CachedServicePrincipal

func (f fakeSecrets) Get(clientID string) (*lib.CachedServicePrincipal, error) {
	cached, ok := f[clientID]
	if !ok {
		return nil, nil
	}
	return &cached, nil
}

func (f fakeSecrets) Set(clientID string, value lib.CachedServicePrincipal) error {
	f[clientID] = value
	return nil
}

type fakeTranscripts struct {
	uploads []lib.TranscriptUpload
	err     error
}

func (f *fakeTranscripts) Upload(_ context.Context, upload lib.TranscriptUpload) (string, error) {
	f.uploads = append(f.uploads, upload)
	if f.err != nil {
		return "", f.err
	}
	return upload.URI + "/" + upload.Name, nil
}

type testEnv struct {
	rt          *commands.Runtime
	stdout      *bytes.Buffer
	stderr      *bytes.Buffer
	images      *fakeImages
	vms         *fakeVMs
	sessions    *fakeSessions
	secrets     fakeSecrets
	transcripts *fakeTranscripts
	lookedUp    []string
	missing     map[string]bool
}

var envNames = []string{
	config.EnvSubscriptionID, config.EnvResourceGroup, config.EnvLocation,
	config.EnvClientID, config.EnvClientSecret, config.EnvTenantID,
	config.EnvRepositoryRoot, config.EnvAdminUsername, config.EnvAdminPassword,
	config.EnvLogURI, config.EnvPowerShell, "RUNNER_IMAGE_CONFIG", "RUNNER_IMAGE_LOG_LEVEL",
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	for _, name := range envNames {
		t.Setenv(name, "")
	}

	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	env := &testEnv{
		stdout:      &bytes.Buffer{},
		stderr:      &bytes.Buffer{},
		images:      &fakeImages{},
		vms:         &fakeVMs{},
		sessions:    &fakeSessions{},
		secrets:     fakeSecrets{},
		transcripts: &fakeTranscripts{},
		missing:     map[string]bool{},
	}

	rt := commands.NewRuntime(strings.NewReader(""), env.stdout, env.stderr)
	rt.LookPath = func(file string) (string, error) {
		env.lookedUp = append(env.lookedUp, file)
		if env.missing[file] {
			return "", errors.Errorf("exec: %q: executable file not found in $PATH", file)
		}
		return "/usr/bin/" + file, nil
	}
	rt.Now = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }
	rt.Images = env.images
	rt.VMs = env.vms
	rt.Sessions = env.sessions
	rt.Secrets = env.secrets
	rt.Transcripts = env.transcripts
	env.rt = rt

	return env
}

func (e *testEnv) run(args ...string) int {
	return run(context.Background(), append([]string{"runner-image"}, args...), e.rt)
}

var buildArgs = []string{"build", "--image-type", "ubuntu2404", "--subscription-id", "S", "--resource-group", "R", "--location", "eastus"}

var deployArgs = []string{"deploy", "--image-name", "I", "--vm-name", "V", "--subscription-id", "S", "--resource-group", "R", "--location", "eastus", "--admin-username", "U", "--admin-password", "P"}

func TestBuild_Success(t *testing.T) {
	env := newTestEnv(t)

	require.Equal(t, 0, env.run(buildArgs...), env.stderr.String())

	out := env.stdout.String()
	require.Contains(t, out, "[INFO] Image type: ubuntu2404")
	require.Contains(t, out, "[INFO] Subscription: S")
	require.Contains(t, out, "[INFO] Resource group: R")
	require.Contains(t, out, "[INFO] Location: eastus")
	require.Contains(t, out, "[SUCCESS]")

	require.Equal(t, []schema.BuildParameters{{
		ImageType:      schema.ImageTypeUbuntu2404,
		SubscriptionID: "S",
		ResourceGroup:  "R",
		Location:       "eastus",
	}}, env.images.calls)
	require.Equal(t, []sessionCall{{subscriptionID: "S"}}, env.sessions.calls)
	require.Equal(t, []string{"pwsh", "az", "packer"}, env.lookedUp)
}

func TestBuild_ImageTypeIsCaseInsensitive(t *testing.T) {
	env := newTestEnv(t)

	require.Equal(t, 0, env.run("build", "-t", "Windows2022", "-s", "S", "-g", "R", "-l", "westeurope"), env.stderr.String())
	require.Len(t, env.images.calls, 1)
	require.Equal(t, schema.ImageTypeWindows2022, env.images.calls[0].ImageType)
}

func TestBuild_InvalidImageType(t *testing.T) {
	env := newTestEnv(t)

	require.Equal(t, 1, env.run("build", "--image-type", "debian12", "--subscription-id", "S", "--resource-group", "R", "--location", "eastus"))
	require.Empty(t, env.images.calls)
	require.Empty(t, env.sessions.calls)
	require.Contains(t, env.stdout.String(), "USAGE:")
	require.Contains(t, env.stderr.String(), "image-type: must be one of: ubuntu2204, ubuntu2404, windows2019, windows2022, windows2025")
}

func TestBuild_MissingRequiredFlags(t *testing.T) {
	env := newTestEnv(t)

	require.Equal(t, 1, env.run("build", "--image-type", "ubuntu2404"))
	require.Empty(t, env.images.calls)
	require.Contains(t, env.stdout.String(), "USAGE:")
	require.Contains(t, env.stderr.String(), "subscription-id: cannot be blank")
}

func TestBuild_PartialServicePrincipal(t *testing.T) {
	env := newTestEnv(t)

	args := append(append([]string{}, buildArgs...), "--client-secret", "secret")
	require.Equal(t, 1, env.run(args...))
	require.Empty(t, env.images.calls)
	require.Contains(t, env.stderr.String(), "client-id: is required when a service principal is used")
}

func TestBuild_CollaboratorFailure(t *testing.T) {
	env := newTestEnv(t)
	env.images.err = errors.New("Build 'azure-arm' errored after 2 minutes: quota exceeded")

	require.Equal(t, 1, env.run(buildArgs...))
	require.Len(t, env.images.calls, 1)
	require.Contains(t, env.stderr.String(), "[ERROR] image generation failed: Build 'azure-arm' errored after 2 minutes: quota exceeded")
	require.NotContains(t, env.stdout.String(), "[SUCCESS]")
}

func TestBuild_MissingPrerequisites(t *testing.T) {
	env := newTestEnv(t)
	env.missing["packer"] = true
	env.missing["az"] = true

	require.Equal(t, 1, env.run(buildArgs...))
	require.Empty(t, env.images.calls)

	stderr := env.stderr.String()
	require.Contains(t, stderr, "missing required tools")
	require.Contains(t, stderr, "az: https://learn.microsoft.com/en-us/cli/azure/install-azure-cli")
	require.Contains(t, stderr, "packer: https://developer.hashicorp.com/packer/install")
	require.NotContains(t, stderr, "pwsh:")
}

func TestBuild_CustomPowerShell(t *testing.T) {
	env := newTestEnv(t)
	env.missing["/opt/powershell/pwsh"] = true

	args := append([]string{"--powershell", "/opt/powershell/pwsh"}, buildArgs...)
	require.Equal(t, 1, env.run(args...))
	require.Contains(t, env.lookedUp, "/opt/powershell/pwsh")
	require.Contains(t, env.stderr.String(), "/opt/powershell/pwsh: https://learn.microsoft.com/en-us/powershell/scripting/install/installing-powershell")
}

func TestBuild_OptionalParameters(t *testing.T) {
	env := newTestEnv(t)

	args := append(append([]string{}, buildArgs...),
		"--managed-image-name", "custom",
		"--tags", "team=ci,env=prod",
		"--on-error", "cleanup",
		"--reuse-resource-group",
		"--repository-root", "/src/runner-images",
	)
	require.Equal(t, 0, env.run(args...), env.stderr.String())
	require.Equal(t, []schema.BuildParameters{{
		ImageType:          schema.ImageTypeUbuntu2404,
		SubscriptionID:     "S",
		ResourceGroup:      "R",
		Location:           "eastus",
		ManagedImageName:   "custom",
		Tags:               map[string]string{"team": "ci", "env": "prod"},
		OnError:            "cleanup",
		ReuseResourceGroup: true,
		RepositoryRoot:     "/src/runner-images",
	}}, env.images.calls)
}

func TestBuild_MalformedTags(t *testing.T) {
	env := newTestEnv(t)

	args := append(append([]string{}, buildArgs...), "--tags", "team")
	require.Equal(t, 1, env.run(args...))
	require.Empty(t, env.images.calls)
	require.Contains(t, env.stdout.String(), "USAGE:")
	require.Contains(t, env.stderr.String(), "invalid --tags")
}

func TestBuild_LoginCheck(t *testing.T) {
	env := newTestEnv(t)
	env.sessions.err = errors.New("subscription S is not available in the Azure CLI")

	require.Equal(t, 1, env.run(buildArgs...))
	require.Empty(t, env.images.calls)
	require.Contains(t, env.stderr.String(), "Azure session check failed")

	env = newTestEnv(t)
	env.sessions.err = errors.New("not logged in")

	args := append(append([]string{}, buildArgs...), "--skip-login-check")
	require.Equal(t, 0, env.run(args...), env.stderr.String())
	require.Empty(t, env.sessions.calls)
	require.Len(t, env.images.calls, 1)
}

func TestBuild_ServicePrincipalFromKeyring(t *testing.T) {
	env := newTestEnv(t)
	env.secrets["client"] = lib.CachedServicePrincipal{ClientSecret: "cached-secret", TenantID: "tenant", SavedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)}

	args := append(append([]string{}, buildArgs...), "--client-id", "client")
	require.Equal(t, 0, env.run(args...), env.stderr.String())

	sp := &schema.ServicePrincipal{ClientID: "client", ClientSecret: "cached-secret", TenantID: "tenant"}
	require.Equal(t, []sessionCall{{subscriptionID: "S", sp: sp}}, env.sessions.calls)
	require.Equal(t, "cached-secret", env.images.calls[0].ClientSecret)
	require.Contains(t, env.stdout.String(), "saved in the keyring on 2026-01-02")

	env = newTestEnv(t)
	env.secrets["client"] = lib.CachedServicePrincipal{ClientSecret: "cached-secret", TenantID: "tenant"}

	args = append(append([]string{}, buildArgs...), "--client-id", "client", "--no-keyring")
	require.Equal(t, 1, env.run(args...))
	require.Empty(t, env.images.calls)
	require.Contains(t, env.stderr.String(), "client-secret: is required when a service principal is used")
}

func TestBuild_SaveCredentials(t *testing.T) {
	env := newTestEnv(t)

	args := append(append([]string{}, buildArgs...), "--client-id", "client", "--client-secret", "secret", "--tenant-id", "tenant", "--save-credentials")
	require.Equal(t, 0, env.run(args...), env.stderr.String())
	require.Equal(t, lib.CachedServicePrincipal{
		ClientSecret: "secret",
		TenantID:     "tenant",
		SavedAt:      time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC),
	}, env.secrets["client"])
}

func TestBuild_SaveCredentialsRequiresLoginCheck(t *testing.T) {
	env := newTestEnv(t)

	args := append(append([]string{}, buildArgs...), "--client-id", "client", "--client-secret", "secret", "--tenant-id", "tenant", "--save-credentials", "--skip-login-check")
	require.Equal(t, 1, env.run(args...))
	require.Empty(t, env.secrets)
	require.Empty(t, env.images.calls)
	require.Contains(t, env.stdout.String(), "USAGE:")
	require.Contains(t, env.stderr.String(), "--save-credentials cannot be combined with --skip-login-check")
}

func TestBuild_TranscriptUpload(t *testing.T) {
	env := newTestEnv(t)
	env.images.output = "==> azure-arm: Creating resource group ..."

	args := append(append([]string{}, buildArgs...), "--log-uri", "https://account.blob.core.windows.net/logs")
	require.Equal(t, 0, env.run(args...), env.stderr.String())

	require.Len(t, env.transcripts.uploads, 1)
	upload := env.transcripts.uploads[0]
	require.Equal(t, "https://account.blob.core.windows.net/logs", upload.URI)
	require.True(t, strings.HasPrefix(upload.Name, "build-2026-03-04_05-06-07-"), upload.Name)
	require.Contains(t, string(upload.Data), "Creating resource group")
	require.Contains(t, env.stdout.String(), "Creating resource group")
	require.Contains(t, env.stdout.String(), "Transcript uploaded to https://account.blob.core.windows.net/logs/build-")
}

func TestBuild_TranscriptUploadFromEnvironment(t *testing.T) {
	env := newTestEnv(t)
	t.Setenv(config.EnvLogURI, "https://account.blob.core.windows.net/logs")

	require.Equal(t, 0, env.run(buildArgs...), env.stderr.String())
	require.Len(t, env.transcripts.uploads, 1)
	require.Equal(t, "https://account.blob.core.windows.net/logs", env.transcripts.uploads[0].URI)

	env = newTestEnv(t)
	t.Setenv(config.EnvLogURI, "https://account.blob.core.windows.net/logs")

	require.Equal(t, 0, env.run(deployArgs...), env.stderr.String())
	require.Len(t, env.transcripts.uploads, 1)
	require.True(t, strings.HasPrefix(env.transcripts.uploads[0].Name, "deploy-"), env.transcripts.uploads[0].Name)
}

func TestBuild_TranscriptUploadFailureIsAWarning(t *testing.T) {
	env := newTestEnv(t)
	env.transcripts.err = errors.New("403 AuthorizationPermissionMismatch")

	args := append(append([]string{}, buildArgs...), "--log-uri", "https://account.blob.core.windows.net/logs")
	require.Equal(t, 0, env.run(args...))
	require.Contains(t, env.stderr.String(), "[WARN] Failed to upload the transcript: 403 AuthorizationPermissionMismatch")

	env = newTestEnv(t)
	env.transcripts.err = errors.New("403 AuthorizationPermissionMismatch")
	env.images.err = errors.New("packer failed")

	require.Equal(t, 1, env.run(args...))
	require.Len(t, env.transcripts.uploads, 1)
	require.Contains(t, string(env.transcripts.uploads[0].Data), "packer failed")
}

func TestDeploy_Success(t *testing.T) {
	env := newTestEnv(t)
	env.missing["packer"] = true

	require.Equal(t, 0, env.run(deployArgs...), env.stderr.String())
	require.Equal(t, []schema.DeployParameters{{
		ImageName:      "I",
		VMName:         "V",
		SubscriptionID: "S",
		ResourceGroup:  "R",
		Location:       "eastus",
		AdminUsername:  "U",
		AdminPassword:  "P",
	}}, env.vms.calls)
	require.Contains(t, env.stdout.String(), "[SUCCESS]")
	require.NotContains(t, env.lookedUp, "packer")
}

func TestDeploy_MissingAdminPassword(t *testing.T) {
	env := newTestEnv(t)

	code := env.run("deploy", "--image-name", "I", "--vm-name", "V", "--subscription-id", "S", "--resource-group", "R", "--location", "eastus", "--admin-username", "U")
	require.Equal(t, 1, code)
	require.Empty(t, env.vms.calls)
	require.Contains(t, env.stdout.String(), "USAGE:")
	require.Contains(t, env.stdout.String(), "--admin-password")
	require.Contains(t, env.stderr.String(), "admin-password: cannot be blank")
}

func TestDeploy_CollaboratorFailure(t *testing.T) {
	env := newTestEnv(t)
	env.vms.err = errors.New("CreateAzureVMFromPackerTemplate failed: image I not found")

	require.Equal(t, 1, env.run(deployArgs...))
	require.Contains(t, env.stderr.String(), "VM deployment failed: CreateAzureVMFromPackerTemplate failed: image I not found")
}

func TestUnknownFlag(t *testing.T) {
	testCases := [][]string{
		{"build", "--bogus"},
		{"deploy", "--image-name", "I", "--bogus", "value"},
		{"--bogus", "build"},
	}

	for _, args := range testCases {
		env := newTestEnv(t)

		require.Equal(t, 1, env.run(args...), "args %v", args)
		require.Contains(t, env.stdout.String(), "USAGE:", "args %v", args)
		require.Contains(t, env.stderr.String(), "flag provided but not defined", "args %v", args)
		require.Empty(t, env.images.calls)
		require.Empty(t, env.vms.calls)
	}
}

func TestHelp(t *testing.T) {
	testCases := [][]string{
		{"help"},
		{"--help"},
		{"-h"},
		{"help", "build"},
		{"help", "bogus"},
		{"build", "--help"},
		{"deploy", "-h"},
		{"deploy", "help"},
		{"deploy", "--bogus", "--image-name", "I", "-h"},
		{"--config", "does-not-exist.json", "build", "-h"},
		{"--log-level", "loud", "--help"},
	}

	for _, args := range testCases {
		env := newTestEnv(t)

		require.Equal(t, 0, env.run(args...), "args %v", args)
		require.Contains(t, env.stdout.String(), "USAGE:", "args %v", args)
		require.Empty(t, env.images.calls)
		require.Empty(t, env.vms.calls)
	}
}

func TestHelp_BrokenEnvironmentSettings(t *testing.T) {
	testCases := []struct {
		envName string
		value   string
	}{
		{envName: "RUNNER_IMAGE_LOG_LEVEL", value: "loud"},
		{envName: "RUNNER_IMAGE_CONFIG", value: "/missing/runner-image.json"},
	}

	for _, tc := range testCases {
		for _, args := range [][]string{{"--help"}, {"help"}, {"build", "-h"}} {
			env := newTestEnv(t)
			t.Setenv(tc.envName, tc.value)

			require.Equal(t, 0, env.run(args...), "%s=%s args %v", tc.envName, tc.value, args)
			require.Contains(t, env.stdout.String(), "USAGE:", "%s=%s args %v", tc.envName, tc.value, args)
		}

		// outside of help the broken setting is still an error
		env := newTestEnv(t)
		t.Setenv(tc.envName, tc.value)
		require.Equal(t, 1, env.run(buildArgs...), "%s=%s", tc.envName, tc.value)
		require.Empty(t, env.images.calls)
	}
}

func TestHelp_Content(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, 0, env.run("help"))

	out := env.stdout.String()
	require.Contains(t, out, "build")
	require.Contains(t, out, "deploy")
	require.Contains(t, out, "EXAMPLES:")

	env = newTestEnv(t)
	require.Equal(t, 0, env.run("help", "deploy"))
	require.Contains(t, env.stdout.String(), "--admin-password")
	require.NotContains(t, env.stdout.String(), "--image-type")
}

func TestNoCommand(t *testing.T) {
	env := newTestEnv(t)

	require.Equal(t, 1, env.run())
	require.Contains(t, env.stdout.String(), "USAGE:")
	require.Contains(t, env.stderr.String(), "no command given")
}

func TestUnknownCommand(t *testing.T) {
	env := newTestEnv(t)

	require.Equal(t, 1, env.run("publish", "--image-type", "ubuntu2404"))
	require.Contains(t, env.stdout.String(), "USAGE:")
	require.Contains(t, env.stderr.String(), `unknown command "publish"`)
}

func TestInvalidLogLevel(t *testing.T) {
	env := newTestEnv(t)

	args := append([]string{"--log-level", "loud"}, buildArgs...)
	require.Equal(t, 1, env.run(args...))
	require.Contains(t, env.stderr.String(), "invalid log level")
	require.Empty(t, env.images.calls)
}

func TestConfigPrecedence(t *testing.T) {
	env := newTestEnv(t)

	dir := t.TempDir()
	configPath := filepath.Join(dir, "runner-image.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("subscriptionId: from-config\nresourceGroup: config-rg\nlocation: eastus\nadminUsername: config-user\n"), 0o644))
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("AZURE_RESOURCE_GROUP=env-file-rg\nAZURE_LOCATION=northeurope\nRUNNER_IMAGE_ADMIN_PASSWORD=from-env-file\n"), 0o644))
	t.Setenv(config.EnvLocation, "westus")

	code := env.run("--config", filepath.Join(dir, "runner-image"), "--env", envPath, "deploy", "--image-name", "I", "--vm-name", "V", "--admin-username", "flag-user")
	require.Equal(t, 0, code, env.stderr.String())

	require.Equal(t, []schema.DeployParameters{{
		ImageName:      "I",
		VMName:         "V",
		SubscriptionID: "from-config",
		ResourceGroup:  "env-file-rg",
		Location:       "westus",
		AdminUsername:  "flag-user",
		AdminPassword:  "from-env-file",
	}}, env.vms.calls)
}

func TestInvalidConfig(t *testing.T) {
	env := newTestEnv(t)

	configPath := filepath.Join(t.TempDir(), "runner-image.json")
	require.NoError(t, os.WriteFile(configPath, []byte(`{"subscription": "typo"}`), 0o644))

	args := append([]string{"--config", configPath}, buildArgs...)
	require.Equal(t, 1, env.run(args...))
	require.Contains(t, env.stderr.String(), "failed to load configuration")
	require.Empty(t, env.images.calls)
}

func newUpdateServer(t *testing.T, version string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var server *httptest.Server
	mux.HandleFunc("/repos/schoolyear/runner-image-cli/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprintf(w, `{"tag_name": %q, "assets": [{"name": %q, "browser_download_url": %q}]}`, version, static.ReleaseFile, server.URL+"/download")
	})
	mux.HandleFunc("/download", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("new-binary"))
	})
	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newFakeExecutable(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "runner-image")
	require.NoError(t, os.WriteFile(path, []byte("old-binary"), 0o755))
	return path
}

func TestUpdate(t *testing.T) {
	env := newTestEnv(t)
	executable := newFakeExecutable(t)
	env.rt.GithubAPIBase = newUpdateServer(t, "v1.0.0").URL
	env.rt.Executable = func() (string, error) { return executable, nil }

	require.Equal(t, 0, env.run("update", "--yes"), env.stderr.String())
	require.Contains(t, env.stdout.String(), "Latest: \tv1.0.0")

	data, err := os.ReadFile(executable)
	require.NoError(t, err)
	require.Equal(t, "new-binary", string(data))
}

func TestUpdate_Declined(t *testing.T) {
	env := newTestEnv(t)
	executable := newFakeExecutable(t)
	env.rt.GithubAPIBase = newUpdateServer(t, "v1.0.0").URL
	env.rt.Executable = func() (string, error) { return executable, nil }
	env.rt.Confirm = func(string) bool { return false }

	require.Equal(t, 0, env.run("update"))
	require.Contains(t, env.stdout.String(), "update canceled")

	data, err := os.ReadFile(executable)
	require.NoError(t, err)
	require.Equal(t, "old-binary", string(data))
}

func TestUpdate_UpToDate(t *testing.T) {
	env := newTestEnv(t)
	env.rt.GithubAPIBase = newUpdateServer(t, static.Version).URL
	env.rt.Executable = func() (string, error) { return newFakeExecutable(t), nil }

	require.Equal(t, 0, env.run("update"))
	require.Contains(t, env.stdout.String(), "You are on the latest version already!")
}
