// Package domain defines the MCP tool, resource, and prompt surface for the
// LinkedIn server: input/output schemas plus handlers that bind the OAuth
// flow and the LinkedIn REST client to the protocol.
package domain
