package lib

import (
	"context"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/friendsofgo/errors"
	"github.com/schoolyear/runner-image-cli/schema"
	"github.com/schoolyear/runner-image-cli/static"
	"github.com/sirupsen/logrus"
)

type AzAccount struct {
	EnvironmentName  string        `json:"environmentName"`
	HomeTenantId     string        `json:"homeTenantId"`
	SubscriptionId   string        `json:"id"`
	IsDefault        bool          `json:"isDefault"`
	ManagedByTenants []string      `json:"managedByTenants"`
	Name             string        `json:"name"`
	State            string        `json:"state"`
	TenantId         string        `json:"tenantId"`
	User             AzAccountUser `json:"user"`
}

type AzAccountUser struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

const azAccountStateEnabled = "Enabled"

// FindSubscription returns nil when the subscription is not in the list
func FindSubscription(accounts []AzAccount, subscriptionID string) *AzAccount {
	for i := range accounts {
		if accounts[i].SubscriptionId == subscriptionID {
			return &accounts[i]
		}
	}
	return nil
}

const tokenCheckTimeout = 30 * time.Second

// AzureSession checks that the collaborators will be able to authenticate
type AzureSession struct {
	Logger logrus.FieldLogger
	// ListAccounts defaults to "az account list"
	ListAccounts func(ctx context.Context) ([]AzAccount, error)
}

func (a AzureSession) Verify(ctx context.Context, subscriptionID string, sp *schema.ServicePrincipal) (string, error) {
	if sp != nil {
		if err := a.verifyServicePrincipal(ctx, sp); err != nil {
			return "", err
		}
		return "service principal " + sp.ClientID, nil
	}

	listAccounts := a.ListAccounts
	if listAccounts == nil {
		listAccounts = listAzAccounts
	}

	accounts, err := listAccounts(ctx)
	if err != nil {
		return "", errors.Wrap(err, "Azure CLI login check failed. Make sure you are logged in. You can run 'az login' (https://learn.microsoft.com/en-us/cli/azure/authenticate-azure-cli)")
	}

	account := FindSubscription(accounts, subscriptionID)
	if account == nil {
		return "", errors.Errorf("subscription %s is not available in the Azure CLI. Try running 'az login' or 'az account list'", subscriptionID)
	}

	if account.State != "" && account.State != azAccountStateEnabled {
		return "", errors.Errorf("subscription %s (%s) is in state %s", account.Name, subscriptionID, account.State)
	}

	if a.Logger != nil {
		a.Logger.WithFields(logrus.Fields{
			"subscription": account.Name,
			"tenant":       account.TenantId,
			"user":         account.User.Name,
		}).Debug("found subscription in Azure CLI session")
	}

	return account.Name, nil
}

func (a AzureSession) verifyServicePrincipal(ctx context.Context, sp *schema.ServicePrincipal) error {
	cred, err := NewAzureCredential(sp)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, tokenCheckTimeout)
	defer cancel()

	if _, err := cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{static.AzureResourceManagerTokenScope}}); err != nil {
		return errors.Wrap(err, "failed to authenticate the service principal")
	}

	return nil
}

func listAzAccounts(ctx context.Context) ([]AzAccount, error) {
	return ExecuteAsParseAsJSON[[]AzAccount](ctx, "az", "account", "list", "--only-show-errors", "-o", "json")
}

// NewAzureCredential uses the service principal when given, the Azure CLI session otherwise
func NewAzureCredential(sp *schema.ServicePrincipal) (azcore.TokenCredential, error) {
	if sp == nil {
		cred, err := azidentity.NewAzureCLICredential(nil)
		if err != nil {
			return nil, errors.Wrap(err, "failed to get Azure CLI credentials")
		}
		return cred, nil
	}

	cred, err := azidentity.NewClientSecretCredential(sp.TenantID, sp.ClientID, sp.ClientSecret, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create service principal credentials")
	}
	return cred, nil
}
