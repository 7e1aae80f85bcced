// Package tools defines the Tool interface for the MCP tool servers, including registration and parameter schema.
// Tool implementations live in sub-packages, one per server.
package tools
