package lib

import (
	"fmt"
	"strings"
)

type Tool struct {
	Name       string
	InstallURL string
}

var (
	ToolPowerShell = Tool{Name: "pwsh", InstallURL: "https://learn.microsoft.com/en-us/powershell/scripting/install/installing-powershell"}
	ToolAzureCLI   = Tool{Name: "az", InstallURL: "https://learn.microsoft.com/en-us/cli/azure/install-azure-cli"}
	ToolPacker     = Tool{Name: "packer", InstallURL: "https://developer.hashicorp.com/packer/install"}
)

// LookPathFunc has the signature of exec.LookPath
type LookPathFunc func(file string) (string, error)

type MissingToolsError struct {
	Tools []Tool
}

func (m *MissingToolsError) Error() string {
	builder := strings.Builder{}
	builder.WriteString("missing required tools. Install them and restart this terminal:")
	for _, tool := range m.Tools {
		builder.WriteString(fmt.Sprintf("\n    - %s: %s", tool.Name, tool.InstallURL))
	}
	return builder.String()
}

// CheckPrerequisites returns a *MissingToolsError listing every tool that lookPath cannot find
func CheckPrerequisites(lookPath LookPathFunc, tools ...Tool) error {
	var missing []Tool
	for _, tool := range tools {
		if _, err := lookPath(tool.Name); err != nil {
			missing = append(missing, tool)
		}
	}

	if len(missing) > 0 {
		return &MissingToolsError{Tools: missing}
	}
	return nil
}
