// Package service constructs the LinkedIn MCP server: it registers the
// domain tools, resources, and prompts on an mcp.Server and runs it over
// stdio or streamable HTTP.
package service
