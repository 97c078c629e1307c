// Package config supplies the demo CLI's settings. The library itself
// takes credentials as arguments; this package only maps the PEERBERRY_*
// environment (or an optional peerberry.yaml in the working directory)
// onto that argument surface.
package config

type Config interface {
	CredentialsConfig
	APIConfig
	AppConfig
}

type CredentialsConfig interface {
	GetEmail() string
	GetPassword() string
	GetTFASecret() string
	GetAccessToken() string
}

type APIConfig interface {
	GetBaseURL() string
}

type AppConfig interface {
	GetAppName() string
	GetLogLevel() string
}

func New() Config {
	return newViperConfig()
}
