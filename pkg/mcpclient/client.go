// Package mcpclient wraps stdio MCP tool servers (Brave search, Google
// Sheets) behind typed helpers with a lazy, process-scoped connection.
package mcpclient

import (
	"context"
	"encoding/json"
	"sync"

	mcpgo "github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// toolConn is the slice of the mcp-go client the wrapper uses; tests
// substitute a fake.
type toolConn interface {
	Initialize(ctx context.Context, req mcp.InitializeRequest) (*mcp.InitializeResult, error)
	ListTools(ctx context.Context, req mcp.ListToolsRequest) (*mcp.ListToolsResult, error)
	CallTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
	Close() error
}

// Client owns at most one live connection to a tool subprocess. The first
// call connects; concurrent callers during the attempt all wait on the same
// in-flight connection rather than spawning a second subprocess. A transport
// error drops back to disconnected so the next call reconnects.
type Client struct {
	name    string
	command string
	args    []string
	env     []string

	dial func() (toolConn, error)

	connectGroup singleflight.Group

	mu         sync.Mutex
	conn       toolConn
	serverInfo mcp.Implementation
}

func New(name, command string, args, env []string) *Client {
	c := &Client{name: name, command: command, args: args, env: env}
	c.dial = func() (toolConn, error) {
		return mcpgo.NewStdioMCPClient(c.command, c.env, c.args...)
	}
	return c
}

func (c *Client) current() toolConn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

func (c *Client) ensure(ctx context.Context) (toolConn, error) {
	if conn := c.current(); conn != nil {
		return conn, nil
	}

	v, err, _ := c.connectGroup.Do("connect", func() (interface{}, error) {
		if conn := c.current(); conn != nil {
			return conn, nil
		}
		log.WithFields(log.Fields{"client": c.name, "command": c.command}).Info("starting MCP tool server")

		conn, err := c.dial()
		if err != nil {
			return nil, errors.Wrapf(err, "starting %s", c.command)
		}

		initReq := mcp.InitializeRequest{}
		initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
		initReq.Params.ClientInfo = mcp.Implementation{Name: c.name, Version: "0.1.0"}
		initRes, err := conn.Initialize(ctx, initReq)
		if err != nil {
			_ = conn.Close()
			return nil, errors.Wrap(err, "MCP handshake failed")
		}

		c.mu.Lock()
		c.conn = conn
		c.serverInfo = initRes.ServerInfo
		c.mu.Unlock()
		return conn, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(toolConn), nil
}

// Call invokes a tool, refreshing the server's tool list first. The refresh
// is best effort; the call proceeds even when it fails.
func (c *Client) Call(ctx context.Context, tool string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	conn, err := c.ensure(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := conn.ListTools(ctx, mcp.ListToolsRequest{}); err != nil {
		log.WithError(err).WithField("client", c.name).Debug("tool list refresh failed")
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = tool
	req.Params.Arguments = args
	res, err := conn.CallTool(ctx, req)
	if err != nil {
		// transport failure, drop the connection so the next call retries
		c.Close()
		return nil, errors.Wrapf(err, "calling tool %s", tool)
	}
	return res, nil
}

func (c *Client) Close() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.serverInfo = mcp.Implementation{}
	c.mu.Unlock()
	if conn != nil {
		if err := conn.Close(); err != nil {
			log.WithError(err).WithField("client", c.name).Warn("closing MCP client")
		}
	}
}

type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type Status struct {
	Connected     bool       `json:"connected"`
	ServerName    string     `json:"serverName,omitempty"`
	ServerVersion string     `json:"serverVersion,omitempty"`
	Tools         []ToolInfo `json:"tools"`
}

// Status connects if needed so the report reflects actual availability.
func (c *Client) Status(ctx context.Context) Status {
	if _, err := c.ensure(ctx); err != nil {
		log.WithError(err).WithField("client", c.name).Warn("MCP status probe could not connect")
		return Status{}
	}

	c.mu.Lock()
	status := Status{
		Connected:     true,
		ServerName:    c.serverInfo.Name,
		ServerVersion: c.serverInfo.Version,
	}
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return Status{}
	}

	if res, err := conn.ListTools(ctx, mcp.ListToolsRequest{}); err == nil {
		for _, t := range res.Tools {
			status.Tools = append(status.Tools, ToolInfo{Name: t.Name, Description: t.Description})
		}
	}
	return status
}

// firstText extracts the first text block from a tool result.
func firstText(res *mcp.CallToolResult) string {
	for _, content := range res.Content {
		if tc, ok := content.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

// decodeStructured re-marshals a result's structured content into out.
// Returns false when the result has no structured content.
func decodeStructured(res *mcp.CallToolResult, out interface{}) bool {
	if res.StructuredContent == nil {
		return false
	}
	raw, err := json.Marshal(res.StructuredContent)
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}
