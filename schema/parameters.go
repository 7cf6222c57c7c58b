package schema

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type ImageType string

const (
	ImageTypeUbuntu2204  ImageType = "ubuntu2204"
	ImageTypeUbuntu2404  ImageType = "ubuntu2404"
	ImageTypeWindows2019 ImageType = "windows2019"
	ImageTypeWindows2022 ImageType = "windows2022"
	ImageTypeWindows2025 ImageType = "windows2025"
)

var ImageTypes = []ImageType{
	ImageTypeUbuntu2204,
	ImageTypeUbuntu2404,
	ImageTypeWindows2019,
	ImageTypeWindows2022,
	ImageTypeWindows2025,
}

// helper scripts declare the image type as a PowerShell enum
var imageTypeHelperNames = map[ImageType]string{
	ImageTypeUbuntu2204:  "Ubuntu2204",
	ImageTypeUbuntu2404:  "Ubuntu2404",
	ImageTypeWindows2019: "Windows2019",
	ImageTypeWindows2022: "Windows2022",
	ImageTypeWindows2025: "Windows2025",
}

// ParseImageType normalises user input. The result is not guaranteed to be a known image type,
// that is left to validation.
func ParseImageType(value string) ImageType {
	return ImageType(strings.ToLower(value))
}

func (i ImageType) HelperName() string {
	if name, ok := imageTypeHelperNames[i]; ok {
		return name
	}
	return string(i)
}

func ImageTypeNames() []string {
	names := make([]string, len(ImageTypes))
	for i, imageType := range ImageTypes {
		names[i] = string(imageType)
	}
	return names
}

func imageTypeRule() validation.Rule {
	elements := make([]interface{}, len(ImageTypes))
	for i, imageType := range ImageTypes {
		elements[i] = imageType
	}
	return validation.In(elements...).Error("must be one of: " + strings.Join(ImageTypeNames(), ", "))
}

var OnErrorPolicies = []string{"abort", "ask", "cleanup", "run-cleanup-provisioner"}

type ServicePrincipal struct {
	ClientID     string
	ClientSecret string
	TenantID     string
}

type BuildParameters struct {
	ImageType      ImageType `json:"image-type"`
	SubscriptionID string    `json:"subscription-id"`
	ResourceGroup  string    `json:"resource-group"`
	Location       string    `json:"location"`

	ClientID     string `json:"client-id"`
	ClientSecret string `json:"client-secret"`
	TenantID     string `json:"tenant-id"`

	ManagedImageName   string            `json:"managed-image-name"`
	Tags               map[string]string `json:"tags"`
	OnError            string            `json:"on-error"`
	RestrictToAgentIP  bool              `json:"restrict-to-agent-ip"`
	ReuseResourceGroup bool              `json:"reuse-resource-group"`
	Force              bool              `json:"force"`

	RepositoryRoot string `json:"repository-root"`
}

func (b BuildParameters) Validate() error {
	// a service principal is only usable when all of its fields are set
	usesServicePrincipal := b.ClientID != "" || b.ClientSecret != "" || b.TenantID != ""

	return validation.ValidateStruct(&b,
		validation.Field(&b.ImageType, validation.Required, imageTypeRule()),
		validation.Field(&b.SubscriptionID, validation.Required),
		validation.Field(&b.ResourceGroup, validation.Required),
		validation.Field(&b.Location, validation.Required),
		validation.Field(&b.ClientID, validation.When(usesServicePrincipal, validation.Required.Error("is required when a service principal is used"))),
		validation.Field(&b.ClientSecret, validation.When(usesServicePrincipal, validation.Required.Error("is required when a service principal is used"))),
		validation.Field(&b.TenantID, validation.When(usesServicePrincipal, validation.Required.Error("is required when a service principal is used"))),
		validation.Field(&b.OnError, validation.In(onErrorElements()...).Error("must be one of: "+strings.Join(OnErrorPolicies, ", "))),
		validation.Field(&b.Tags, validation.By(validateTags)),
	)
}

// ServicePrincipal returns nil when the build authenticates through the Azure CLI session
func (b BuildParameters) ServicePrincipal() *ServicePrincipal {
	if b.ClientID == "" && b.ClientSecret == "" && b.TenantID == "" {
		return nil
	}

	return &ServicePrincipal{
		ClientID:     b.ClientID,
		ClientSecret: b.ClientSecret,
		TenantID:     b.TenantID,
	}
}

func onErrorElements() []interface{} {
	elements := make([]interface{}, len(OnErrorPolicies))
	for i, policy := range OnErrorPolicies {
		elements[i] = policy
	}
	return elements
}

func validateTags(value interface{}) error {
	tags, _ := value.(map[string]string)
	for key := range tags {
		if key == "" {
			return validation.NewError("validation_tag_key_empty", "tag keys cannot be empty")
		}
	}
	return nil
}

type DeployParameters struct {
	ImageName      string `json:"image-name"`
	VMName         string `json:"vm-name"`
	SubscriptionID string `json:"subscription-id"`
	ResourceGroup  string `json:"resource-group"`
	Location       string `json:"location"`
	AdminUsername  string `json:"admin-username"`
	AdminPassword  string `json:"admin-password"`

	RepositoryRoot string `json:"repository-root"`
}

func (d DeployParameters) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.ImageName, validation.Required),
		validation.Field(&d.VMName, validation.Required),
		validation.Field(&d.SubscriptionID, validation.Required),
		validation.Field(&d.ResourceGroup, validation.Required),
		validation.Field(&d.Location, validation.Required),
		validation.Field(&d.AdminUsername, validation.Required),
		validation.Field(&d.AdminPassword, validation.Required),
	)
}
