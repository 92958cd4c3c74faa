// Package mcpserver exposes canon over the Model Context Protocol so editors
// and agents can list agents, resolve standards and analyze diffs.
package mcpserver
