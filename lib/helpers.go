package lib

import (
	"context"
	"os"
	"path/filepath"

	"github.com/friendsofgo/errors"
	"github.com/schoolyear/runner-image-cli/schema"
	"github.com/schoolyear/runner-image-cli/static"
	"github.com/sirupsen/logrus"
)

// HelperScripts runs the PowerShell helpers of a runner-images checkout
type HelperScripts struct {
	PowerShell     string
	RepositoryRoot string
	Logger         logrus.FieldLogger
}

func (h HelperScripts) GenerateImage(ctx context.Context, params schema.BuildParameters, streams Streams) error {
	call := h.generateImageCall(params)
	return h.run(ctx, call, streams)
}

func (h HelperScripts) DeployVM(ctx context.Context, params schema.DeployParameters, streams Streams) error {
	call := h.deployVMCall(params)
	return h.run(ctx, call, streams)
}

// repositoryRoot prefers the root passed with the parameters
func (h HelperScripts) repositoryRoot(paramRoot string) string {
	if paramRoot != "" {
		return paramRoot
	}
	if h.RepositoryRoot != "" {
		return h.RepositoryRoot
	}
	return "."
}

func helperPath(root, script string) string {
	return filepath.Join(root, static.HelpersDirectory, script)
}

func (h HelperScripts) generateImageCall(params schema.BuildParameters) PowerShellCall {
	root := h.repositoryRoot(params.RepositoryRoot)
	args := []PowerShellArg{
		{Name: "SubscriptionId", Value: params.SubscriptionID},
		{Name: "ResourceGroupName", Value: params.ResourceGroup},
		{Name: "ImageType", Value: params.ImageType.HelperName()},
		{Name: "AzureLocation", Value: params.Location},
		{Name: "ImageGenerationRepositoryRoot", Value: root},
	}

	if params.ManagedImageName != "" {
		args = append(args, PowerShellArg{Name: "ManagedImageName", Value: params.ManagedImageName})
	}

	if sp := params.ServicePrincipal(); sp != nil {
		args = append(args,
			PowerShellArg{Name: "AzureClientId", Value: sp.ClientID},
			PowerShellArg{Name: "AzureClientSecret", Value: sp.ClientSecret, Secret: true},
			PowerShellArg{Name: "AzureTenantId", Value: sp.TenantID},
		)
	}

	if params.OnError != "" {
		args = append(args, PowerShellArg{Name: "OnError", Value: params.OnError})
	}

	if len(params.Tags) > 0 {
		args = append(args, PowerShellArg{Name: "Tags", Value: params.Tags})
	}

	args = append(args,
		PowerShellArg{Name: "RestrictToAgentIpAddress", Value: params.RestrictToAgentIP},
		PowerShellArg{Name: "ReuseResourceGroup", Value: params.ReuseResourceGroup},
		PowerShellArg{Name: "Force", Value: params.Force},
	)

	return PowerShellCall{
		Module:   helperPath(root, static.GenerateImageHelperScript),
		Function: static.GenerateImageHelperFunction,
		Args:     args,
	}
}

func (h HelperScripts) deployVMCall(params schema.DeployParameters) PowerShellCall {
	return PowerShellCall{
		Module:   helperPath(h.repositoryRoot(params.RepositoryRoot), static.DeployVMHelperScript),
		Function: static.DeployVMHelperFunction,
		Args: []PowerShellArg{
			{Name: "SubscriptionId", Value: params.SubscriptionID},
			{Name: "ResourceGroupName", Value: params.ResourceGroup},
			{Name: "ManagedImageName", Value: params.ImageName},
			{Name: "VirtualMachineName", Value: params.VMName},
			{Name: "AdminUsername", Value: params.AdminUsername},
			{Name: "AdminPassword", Value: params.AdminPassword, Secret: true},
			{Name: "AzureLocation", Value: params.Location},
		},
	}
}

func (h HelperScripts) run(ctx context.Context, call PowerShellCall, streams Streams) error {
	info, err := os.Stat(call.Module)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Errorf("helper script not found: %s. Point --repository-root at a runner-images checkout", call.Module)
		}
		return errors.Wrapf(err, "failed to check helper script %s", call.Module)
	}
	if info.IsDir() {
		return errors.Errorf("helper script is a directory: %s", call.Module)
	}

	powerShell := h.PowerShell
	if powerShell == "" {
		powerShell = static.DefaultPowerShellExecutable
	}

	if h.Logger != nil {
		h.Logger.WithFields(logrus.Fields{
			"executable": powerShell,
			"function":   call.Function,
			"script":     call.RedactedScript(),
		}).Debug("invoking helper script")
	}

	if err := ExecuteStreaming(ctx, streams, powerShell, "-NoLogo", "-NoProfile", "-NonInteractive", "-EncodedCommand", call.EncodedScript()); err != nil {
		return errors.Wrapf(err, "%s failed", call.Function)
	}

	return nil
}
