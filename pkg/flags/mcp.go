package flags

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/neezs/neezspilot/pkg/mcpclient"
)

// MCPFlags configure the stdio tool server subprocesses.
type MCPFlags struct {
	SearchServerCommand string
	SheetsServerCommand string
	BraveAPIKey         string
}

func NewMCPFlags() *MCPFlags {
	return &MCPFlags{
		SearchServerCommand: os.Getenv("MCP_SEARCH_SERVER_COMMAND"),
		SheetsServerCommand: os.Getenv("MCP_SHEETS_SERVER_COMMAND"),
		BraveAPIKey:         os.Getenv("BRAVE_API_KEY"),
	}
}

func (f *MCPFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.SearchServerCommand, "mcp-search-server-command", f.SearchServerCommand,
		"command line launching the web search MCP server; empty disables search (env MCP_SEARCH_SERVER_COMMAND)")
	fs.StringVar(&f.SheetsServerCommand, "mcp-sheets-server-command", f.SheetsServerCommand,
		"command line launching the Google Sheets MCP server; empty disables the /sheet and /drive commands (env MCP_SHEETS_SERVER_COMMAND)")
}

// GetSearchClient returns nil when no search server is configured.
func (f *MCPFlags) GetSearchClient() (*mcpclient.SearchClient, error) {
	if f.SearchServerCommand == "" {
		return nil, nil
	}
	command, args, err := splitCommand(f.SearchServerCommand)
	if err != nil {
		return nil, err
	}
	var env []string
	if f.BraveAPIKey != "" {
		env = append(env, fmt.Sprintf("BRAVE_API_KEY=%s", f.BraveAPIKey))
	}
	return mcpclient.NewSearchClient(command, args, env), nil
}

// GetSheetsToolClient returns nil when no sheets server is configured.
func (f *MCPFlags) GetSheetsToolClient(google *GoogleCloudFlags) (*mcpclient.SheetsToolClient, error) {
	if f.SheetsServerCommand == "" {
		return nil, nil
	}
	command, args, err := splitCommand(f.SheetsServerCommand)
	if err != nil {
		return nil, err
	}
	var env []string
	if google != nil && google.ServiceAccountCredentialFile != "" {
		env = append(env, fmt.Sprintf("GOOGLE_APPLICATION_CREDENTIALS=%s", google.ServiceAccountCredentialFile))
	}
	return mcpclient.NewSheetsToolClient(command, args, env), nil
}

// splitCommand breaks a command line on whitespace. Arguments with embedded
// spaces are not supported; the tool servers take none.
func splitCommand(raw string) (string, []string, error) {
	parts := strings.Fields(raw)
	if len(parts) == 0 {
		return "", nil, errors.Errorf("empty command line %q", raw)
	}
	return parts[0], parts[1:], nil
}
