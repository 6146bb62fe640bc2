package constants

const (
	AppStorefrontService = "storefront-service"

	AudienceStorefront = "audience-storefront"
	IssuerIdentity     = "identity-service"
)
