package lib

import (
	"context"
	"testing"

	"github.com/friendsofgo/errors"
	"github.com/stretchr/testify/require"
)

func accountsFixture() []AzAccount {
	return []AzAccount{
		{SubscriptionId: "sub-a", Name: "Production", State: "Enabled", TenantId: "tenant"},
		{SubscriptionId: "sub-b", Name: "Legacy", State: "Disabled", TenantId: "tenant"},
	}
}

func TestFindSubscription(t *testing.T) {
	accounts := accountsFixture()

	found := FindSubscription(accounts, "sub-a")
	require.NotNil(t, found)
	require.Equal(t, "Production", found.Name)

	require.Nil(t, FindSubscription(accounts, "sub-c"))
	require.Nil(t, FindSubscription(nil, "sub-a"))
}

func TestAzureSession_Verify(t *testing.T) {
	session := AzureSession{
		ListAccounts: func(ctx context.Context) ([]AzAccount, error) {
			return accountsFixture(), nil
		},
	}

	name, err := session.Verify(context.Background(), "sub-a", nil)
	require.NoError(t, err)
	require.Equal(t, "Production", name)

	_, err = session.Verify(context.Background(), "sub-c", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "az login")

	_, err = session.Verify(context.Background(), "sub-b", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Disabled")
}

func TestAzureSession_VerifyNotLoggedIn(t *testing.T) {
	session := AzureSession{
		ListAccounts: func(ctx context.Context) ([]AzAccount, error) {
			return nil, errors.New("Please run 'az login' to setup account.")
		},
	}

	_, err := session.Verify(context.Background(), "sub-a", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Azure CLI login check failed")
}
