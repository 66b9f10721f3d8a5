// Package mcp parses MCP command flags and wires the OAuth and LinkedIn
// subsystems into the MCP server runtime.
package mcp

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/inletworks/linkedin-mcp/internal/platform/config"
	"github.com/inletworks/linkedin-mcp/internal/platform/otel"
	"github.com/inletworks/linkedin-mcp/internal/services/auth/oauth"
	"github.com/inletworks/linkedin-mcp/internal/services/linkedin"
	"github.com/inletworks/linkedin-mcp/internal/services/mcp/service"
)

// Config holds MCP command configuration.
type Config struct {
	Transport string `env:"LINKEDIN_MCP_TRANSPORT" envDefault:"stdio"`
	HTTPAddr  string `env:"LINKEDIN_MCP_HTTP_ADDR" envDefault:"localhost:8081"`
	APIURL    string `env:"LINKEDIN_API_URL"       envDefault:"https://api.linkedin.com/v2"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport type: stdio or http")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP server address (for HTTP transport)")
	fs.StringVar(&cfg.APIURL, "api-url", cfg.APIURL, "LinkedIn API base URL")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP server and blocks until context cancellation.
func Run(ctx context.Context, cfg Config) error {
	shutdown, err := otel.Setup(ctx, "mcp")
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Printf("otel shutdown: %v", err)
		}
	}()

	oauthCfg, err := oauth.LoadConfig()
	if err != nil {
		return err
	}
	if err := oauthCfg.Validate(); err != nil {
		// Credentials can arrive later; tools report the same error when used.
		log.Printf("oauth configuration: %v", err)
	}

	listener := oauth.NewListener(oauthCfg)
	if _, err := listener.Start(0); err != nil {
		// Not fatal: the port may free up, and callback_server_start can
		// bind another one.
		log.Printf("callback listener: %v", err)
	}
	defer listener.Stop()

	store := oauth.NewSessionStore(oauthCfg)
	flow := oauth.NewFlow(oauthCfg, listener, store)

	return service.Run(ctx, service.Config{
		Transport: service.TransportKind(cfg.Transport),
		HTTPAddr:  cfg.HTTPAddr,
	}, service.Deps{
		Flow:     flow,
		Listener: listener,
		Store:    store,
		LinkedIn: linkedin.NewClientWithBaseURL(cfg.APIURL),
	})
}
