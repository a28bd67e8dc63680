package constants

// Environments
const (
	EnvDevelop    = "develop"
	EnvProduction = "production"
)

// Pub/Sub providers
const (
	PubSubProviderLocal  = "local"
	PubSubProviderGoogle = "google"
)

// ShareLinkPathPrefix is the public path share links are served under.
const ShareLinkPathPrefix = "/share/"
