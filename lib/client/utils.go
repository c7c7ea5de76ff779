package client

import (
	"fmt"
	"strings"
)

const (
	// OktaServerUs is the united states region okta domain
	OktaServerUs = "okta.com"

	// OktaserverEmea is the europe, middle east and africa region okta domain
	OktaServerEmea = "okta-emea.com"

	// OktaserverPreview is the preview domain for testing future okta releases
	OktaServerPreview = "oktapreview.com"
)

// GetOKtaDomain looks up the okta domain based on the region. For example, the okta domain
// for "us" is `okta.com` making your api domain as `<your-org>.okta.com`
func GetOktaDomain(region string) (string, error) {
	switch region {
	case "us":
		return OktaServerUs, nil
	case "emea":
		return OktaServerEmea, nil
	case "preview":
		return OktaServerPreview, nil
	}
	return "", fmt.Errorf("invalid region %s", region)
}

// IssuerURL builds an issuer from an org name, a region and an optional
// authorization server id.
func IssuerURL(org, region, authServer string) (string, error) {
	domain, err := GetOktaDomain(region)
	if err != nil {
		return "", err
	}
	issuer := fmt.Sprintf("https://%s.%s", org, domain)
	authServer = strings.Trim(authServer, "/")
	if authServer != "" {
		issuer += "/oauth2/" + authServer
	}
	return issuer, nil
}
