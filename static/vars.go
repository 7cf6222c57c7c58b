package static

// these variables are baked in during compilation
var (
	Version     = "v0.0.0"
	ReleaseFile = "unknown-release-file"
)

var (
	GithubAPIBase      = "https://api.github.com"
	GithubReleaseOwner = "schoolyear"
	GithubReleaseRepo  = "runner-image-cli"
)

var (
	KeyringServiceName = "runnerimage"
)

// helper scripts shipped in the runner-images repository
const (
	HelpersDirectory               = "helpers"
	GenerateImageHelperScript      = "GenerateResourcesAndImage.ps1"
	GenerateImageHelperFunction    = "GenerateResourcesAndImage"
	DeployVMHelperScript           = "CreateAzureVMFromPackerTemplate.ps1"
	DeployVMHelperFunction         = "CreateAzureVMFromPackerTemplate"
	DefaultPowerShellExecutable    = "pwsh"
	AzureResourceManagerTokenScope = "https://management.azure.com/.default"
)

type ContextKey int

const (
	CtxRuntimeKey ContextKey = iota
)
