package commands

import (
	"github.com/schoolyear/runner-image-cli/lib"
	"github.com/schoolyear/runner-image-cli/schema"
)

// fillServicePrincipalFromKeyring completes a service principal given by client id only
func (rt *Runtime) fillServicePrincipalFromKeyring(params *schema.BuildParameters) {
	if params.ClientID == "" || params.ClientSecret != "" || params.TenantID != "" {
		return
	}

	cached, err := rt.secretStore().Get(params.ClientID)
	if err != nil {
		rt.Reporter().Warn("Could not read the keyring: %s", err.Error())
		return
	}
	if cached == nil {
		rt.Logger.WithField("clientId", params.ClientID).Debug("no cached service principal in keyring")
		return
	}

	params.ClientSecret = cached.ClientSecret
	params.TenantID = cached.TenantID
	rt.Reporter().Info("Using the service principal secret saved in the keyring on %s", cached.SavedAt.Format("2006-01-02"))
}

func (rt *Runtime) saveServicePrincipal(sp *schema.ServicePrincipal) {
	reporter := rt.Reporter()
	if sp == nil {
		reporter.Warn("--save-credentials has no effect without a service principal")
		return
	}

	err := rt.secretStore().Set(sp.ClientID, lib.CachedServicePrincipal{
		ClientSecret: sp.ClientSecret,
		TenantID:     sp.TenantID,
		SavedAt:      rt.Now().UTC(),
	})
	if err != nil {
		reporter.Warn("Could not save the service principal: %s", err.Error())
		return
	}

	reporter.Info("Saved the service principal secret of %s in the keyring", sp.ClientID)
}
