package service

import (
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/inletworks/linkedin-mcp/internal/services/auth/oauth"
	"github.com/inletworks/linkedin-mcp/internal/services/linkedin"
	"github.com/inletworks/linkedin-mcp/internal/services/mcp/domain"
)

const (
	// serverName identifies the MCP server implementation.
	serverName = "linkedin-mcp"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
)

// TransportKind identifies the MCP transport implementation.
type TransportKind string

const (
	// TransportStdio uses standard input/output for MCP.
	TransportStdio TransportKind = "stdio"
	// TransportHTTP runs MCP over streamable HTTP for remote clients.
	TransportHTTP TransportKind = "http"
)

// Config configures the MCP server runtime.
type Config struct {
	Transport TransportKind
	// HTTPAddr is the listen address for the HTTP transport. Defaults to
	// localhost-only binding.
	HTTPAddr string
}

// Deps bundles the shared subsystems the MCP surface binds to. All fields
// are required.
type Deps struct {
	Flow     *oauth.Flow
	Listener *oauth.Listener
	Store    *oauth.SessionStore
	LinkedIn *linkedin.Client
}

func (d Deps) validate() error {
	if d.Flow == nil {
		return fmt.Errorf("oauth flow is required")
	}
	if d.Listener == nil {
		return fmt.Errorf("callback listener is required")
	}
	if d.Store == nil {
		return fmt.Errorf("session store is required")
	}
	if d.LinkedIn == nil {
		return fmt.Errorf("linkedin client is required")
	}
	return nil
}

// Server hosts the MCP server.
type Server struct {
	mcpServer *mcp.Server
	deps      Deps
}

// New creates a configured MCP server with every tool, resource, and prompt
// registered.
func New(deps Deps) (*Server, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)

	registerAuthTools(mcpServer, deps)
	registerLinkedInTools(mcpServer, deps)
	registerResources(mcpServer, deps)
	registerPrompts(mcpServer)

	return &Server{mcpServer: mcpServer, deps: deps}, nil
}

func registerAuthTools(server *mcp.Server, deps Deps) {
	mcp.AddTool(server, domain.AuthenticateTool(), domain.AuthenticateHandler(deps.Flow))
	mcp.AddTool(server, domain.SessionUserTool(), domain.SessionUserHandler(deps.Store))
	mcp.AddTool(server, domain.SessionsListTool(), domain.SessionsListHandler(deps.Store))
	mcp.AddTool(server, domain.RevokeTool(), domain.RevokeHandler(deps.Store))
	mcp.AddTool(server, domain.CallbackServerStartTool(), domain.CallbackServerStartHandler(deps.Listener))
	mcp.AddTool(server, domain.CallbackServerStopTool(), domain.CallbackServerStopHandler(deps.Listener))
	mcp.AddTool(server, domain.CallbackServerStatusTool(), domain.CallbackServerStatusHandler(deps.Listener))
}

func registerLinkedInTools(server *mcp.Server, deps Deps) {
	mcp.AddTool(server, domain.ProfileTool(), domain.ProfileHandler(deps.LinkedIn, deps.Store))
	mcp.AddTool(server, domain.ConnectionsTool(), domain.ConnectionsHandler(deps.LinkedIn, deps.Store))
	mcp.AddTool(server, domain.SearchPeopleTool(), domain.SearchPeopleHandler(deps.LinkedIn, deps.Store))
	mcp.AddTool(server, domain.ShareTool(), domain.ShareHandler(deps.LinkedIn, deps.Store))
	mcp.AddTool(server, domain.PostTool(), domain.PostHandler(deps.LinkedIn, deps.Store))
	mcp.AddTool(server, domain.ActivitySummaryTool(), domain.ActivitySummaryHandler(deps.LinkedIn, deps.Store))
}

func registerResources(server *mcp.Server, deps Deps) {
	server.AddResourceTemplate(domain.ProfileResourceTemplate(), domain.ProfileResourceHandler(deps.LinkedIn, deps.Store))
	server.AddResourceTemplate(domain.ConnectionsResourceTemplate(), domain.ConnectionsResourceHandler(deps.LinkedIn, deps.Store))
}

func registerPrompts(server *mcp.Server) {
	server.AddPrompt(domain.ProfileSummaryPrompt(), domain.ProfileSummaryPromptHandler())
	server.AddPrompt(domain.NetworkingStrategyPrompt(), domain.NetworkingStrategyPromptHandler())
	server.AddPrompt(domain.ContentCreationPrompt(), domain.ContentCreationPromptHandler())
	server.AddPrompt(domain.PostCopywriterPrompt(), domain.PostCopywriterPromptHandler())
}
