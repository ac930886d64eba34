package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/unowned-ai/nstil/pkg/journal"
)

// parseTags splits a comma-separated list, dropping blanks.
func parseTags(tagsStr string) []string {
	var tagsList []string
	for _, tag := range strings.Split(tagsStr, ",") {
		if t := strings.TrimSpace(tag); t != "" {
			tagsList = append(tagsList, t)
		}
	}
	return tagsList
}

func stringArg(request mcp.CallToolRequest, name string) (string, bool) {
	v, ok := request.Params.Arguments[name].(string)
	return v, ok
}

// intArg reads a JSON number argument; absent or non-numeric yields 0.
func intArg(request mcp.CallToolRequest, name string) int {
	switch v := request.Params.Arguments[name].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func jsonResult(v any, what string) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize %s to JSON: %v", what, err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

// capturingSaver remembers the entry returned by the last successful save so
// the tool can report it.
type capturingSaver struct {
	next  journal.EntriesAPI
	saved journal.Entry
}

func (c *capturingSaver) Create(ctx context.Context, in journal.EntryCreate) (journal.Entry, error) {
	e, err := c.next.Create(ctx, in)
	if err == nil {
		c.saved = e
	}
	return e, err
}

func (c *capturingSaver) Update(ctx context.Context, id string, patch journal.EntryUpdate) (journal.Entry, error) {
	e, err := c.next.Update(ctx, id, patch)
	if err == nil {
		c.saved = e
	}
	return e, err
}
