package oauth

import (
	"fmt"
	"net"
	"net/url"
	"strconv"

	"golang.org/x/oauth2"

	"github.com/inletworks/linkedin-mcp/internal/platform/config"
)

// SupportedScopes is the fixed allow-list of LinkedIn OAuth scopes. Requests
// carrying any scope outside this list are rejected before any listener or
// network interaction.
var SupportedScopes = []string{"openid", "profile", "email", "w_member_social"}

// DefaultScopes is requested when the caller does not name scopes explicitly.
var DefaultScopes = []string{"openid", "profile", "email", "w_member_social"}

// DefaultCallbackPort is used when the redirect URI does not carry an
// explicit port.
const DefaultCallbackPort = 8080

// Config holds LinkedIn OAuth provider settings.
type Config struct {
	ClientID     string `env:"LINKEDIN_CLIENT_ID"`
	ClientSecret string `env:"LINKEDIN_CLIENT_SECRET"`
	RedirectURI  string `env:"LINKEDIN_REDIRECT_URI"  envDefault:"http://localhost:8080/callback"`

	AuthURL     string `env:"LINKEDIN_AUTH_URL"      envDefault:"https://www.linkedin.com/oauth/v2/authorization"`
	TokenURL    string `env:"LINKEDIN_TOKEN_URL"     envDefault:"https://www.linkedin.com/oauth/v2/accessToken"`
	UserInfoURL string `env:"LINKEDIN_USERINFO_URL"  envDefault:"https://api.linkedin.com/v2/userinfo"`
	// RevokeURL is optional: LinkedIn has no standard revocation endpoint, so
	// revocation is a no-op unless one is configured.
	RevokeURL string `env:"LINKEDIN_REVOKE_URL"`
}

// LoadConfig reads provider configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that credentials are present and the redirect URI is a
// well-formed absolute URL.
func (c Config) Validate() error {
	if c.ClientID == "" {
		return &ValidationError{Message: "LINKEDIN_CLIENT_ID is required"}
	}
	if c.ClientSecret == "" {
		return &ValidationError{Message: "LINKEDIN_CLIENT_SECRET is required"}
	}
	parsed, err := url.Parse(c.RedirectURI)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return &ValidationError{Message: fmt.Sprintf("redirect URI %q is malformed", c.RedirectURI)}
	}
	return nil
}

// CallbackPath returns the path component of the registered redirect URI.
// The callback listener serves exactly this path.
func (c Config) CallbackPath() string {
	parsed, err := url.Parse(c.RedirectURI)
	if err != nil || parsed.Path == "" {
		return "/callback"
	}
	return parsed.Path
}

// CallbackPort returns the port the registered redirect URI points at.
func (c Config) CallbackPort() int {
	parsed, err := url.Parse(c.RedirectURI)
	if err != nil {
		return DefaultCallbackPort
	}
	if port := parsed.Port(); port != "" {
		if value, err := strconv.Atoi(port); err == nil {
			return value
		}
	}
	return DefaultCallbackPort
}

// CallbackHost returns the host (without port) the listener binds to.
func (c Config) CallbackHost() string {
	parsed, err := url.Parse(c.RedirectURI)
	if err != nil {
		return "localhost"
	}
	if host := parsed.Hostname(); host != "" {
		return host
	}
	return "localhost"
}

// listenAddr is the TCP address the callback listener binds for a preferred
// port, constrained to the redirect URI's host.
func (c Config) listenAddr(port int) string {
	return net.JoinHostPort(c.CallbackHost(), strconv.Itoa(port))
}

// oauth2Config builds the x/oauth2 configuration for one attempt. LinkedIn
// expects client credentials in the POST body, not basic auth.
func (c Config) oauth2Config(scopes []string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURI,
		Scopes:       scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   c.AuthURL,
			TokenURL:  c.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// ValidateScopes checks every requested scope against the fixed allow-list.
// It fails fast with a ValidationError naming all offending scopes rather
// than silently dropping them.
func ValidateScopes(scopes []string) error {
	supported := make(map[string]struct{}, len(SupportedScopes))
	for _, scope := range SupportedScopes {
		supported[scope] = struct{}{}
	}

	var unsupported []string
	for _, scope := range scopes {
		if _, ok := supported[scope]; !ok {
			unsupported = append(unsupported, scope)
		}
	}
	if len(unsupported) > 0 {
		return &ValidationError{UnsupportedScopes: unsupported}
	}
	return nil
}
