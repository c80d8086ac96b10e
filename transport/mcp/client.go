package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/tabletop-robot/game/engine"
	"github.com/wricardo/tabletop-robot/game/service"
)

// Grids larger than this in either dimension are described but not drawn
const maxRenderSize = 40

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Tabletop Robot",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Tabletop Robot - MCP Interface

This is a thin client that proxies all requests to the REST API server.

A toy robot moves on a rectangular table. Scripts are whitespace separated
commands: PLACE X,Y,HEADING, MOVE, LEFT, RIGHT and REPORT. Commands before
the first valid PLACE are ignored, and moves that would leave the table are
ignored. A script with a malformed PLACE or an unknown command is rejected
as a whole and the session is left unchanged.

AVAILABLE TOOLS:
- create_session: Create a new robot session
- list_sessions / get_session: Inspect sessions
- robot_state: Current position and heading, with a drawing of the table
- execute_commands: Run a script against a session
- reset_robot: Remove the robot from the table
- command_history: Operations applied to a session
- run_script: Run a script on a fresh table without a session
- list_configs: List table configurations
- robot_instructions: Full command reference`),
	)

	c.registerTools()
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

var sessionIDProp = stringProp("Session ID")

func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new robot session with optional table configuration",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id":  stringProp("Configuration ID from list_configs (optional)"),
				"session_id": stringProp("Session ID to use, letters, digits, '-' or '_' (optional, generated when omitted)"),
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active robot sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProp,
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Robot operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "robot_state",
		Description: "Get the robot's position and heading on the table",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProp,
			},
			Required: []string{"session_id"},
		},
	}, c.handleRobotState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "execute_commands",
		Description: "Run a command script against a session, e.g. \"PLACE 0,0,NORTH MOVE REPORT\"",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProp,
				"script":     stringProp("Whitespace separated commands"),
				"lenient": map[string]interface{}{
					"type":        "boolean",
					"description": "Skip unknown commands instead of rejecting the script",
				},
			},
			Required: []string{"session_id", "script"},
		},
	}, c.handleExecuteCommands)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_robot",
		Description: "Remove the robot from the table. History is kept.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProp,
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "command_history",
		Description: "Get the operations applied to a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProp,
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Oldest first (asc) or newest first (desc)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleCommandHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "run_script",
		Description: "Run a command script on a fresh table without creating a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"script":    stringProp("Whitespace separated commands"),
				"config_id": stringProp("Configuration ID (optional)"),
				"lenient": map[string]interface{}{
					"type":        "boolean",
					"description": "Skip unknown commands instead of rejecting the script",
				},
			},
			Required: []string{"script"},
		},
	}, c.handleRunScript)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available table configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "robot_instructions",
		Description: "Get the full command reference",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configID, _ := args["config_id"].(string)
	sessionID, _ := args["session_id"].(string)

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}
	if sessionID != "" {
		body["id"] = sessionID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s", session.ID, session.ConfigName, formatGridState(session.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		fmt.Fprintf(&b, "- %s (Config: %s, Robot: %s, Created: %s)\n",
			s.ID, s.ConfigName, robotSummary(s.State), s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleRobotState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var state engine.GridState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGridState(&state)), nil
}

func (c *Client) handleExecuteCommands(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	script, _ := args["script"].(string)
	lenient, _ := args["lenient"].(bool)

	body := map[string]interface{}{
		"script":  script,
		"lenient": lenient,
	}

	var result service.ExecResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/commands"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatExecResult(&result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message string            `json:"message"`
		State   *engine.GridState `json:"state"`
	}

	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGridState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleCommandHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	params := url.Values{}
	if page, ok := args["page"].(float64); ok {
		params.Set("page", fmt.Sprintf("%d", int(page)))
	}
	if limit, ok := args["limit"].(float64); ok {
		params.Set("limit", fmt.Sprintf("%d", int(limit)))
	}
	if order, ok := args["order"].(string); ok && order != "" {
		params.Set("order", order)
	}

	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleRunScript(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	script, _ := args["script"].(string)
	configID, _ := args["config_id"].(string)
	lenient, _ := args["lenient"].(bool)

	body := map[string]interface{}{
		"script":    script,
		"config_id": configID,
		"lenient":   lenient,
	}

	var result service.ExecResult
	if err := c.apiCall(ctx, "POST", "/api/run", body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatExecResult(&result)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Table: %dx%d\n\n",
			config.Name, config.ConfigID, config.Description, config.Width, config.Height)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Tabletop Robot - Command Reference

THE TABLE:
• A rectangle of W x H unit squares, 5x5 unless the config says otherwise
• (0,0) is the SOUTH WEST corner; x grows EAST, y grows NORTH

COMMANDS (case-insensitive, separated by any whitespace):
• PLACE X,Y,F  Put the robot at X,Y facing F (NORTH, EAST, SOUTH or WEST).
               The argument is a single token: no spaces around the commas.
               A placement off the table is ignored.
• MOVE         One unit forward. Ignored if it would leave the table.
• LEFT         Rotate 90 degrees anticlockwise.
• RIGHT        Rotate 90 degrees clockwise.
• REPORT       Output X,Y,F.

RULES:
• Everything before the first valid PLACE is ignored
• A later PLACE replaces the robot
• A malformed PLACE rejects the whole script before anything runs
• An unknown command rejects the script unless lenient is set
• A rejected script leaves the session unchanged

EXAMPLES:
PLACE 0,0,NORTH MOVE REPORT                 -> 0,1,NORTH
PLACE 0,0,NORTH LEFT REPORT                 -> 0,0,WEST
PLACE 1,2,EAST MOVE MOVE LEFT MOVE REPORT   -> 3,3,NORTH

WORKFLOW:
1. list_configs to pick a table
2. create_session with the config_id
3. execute_commands with a script
4. robot_state or command_history to inspect the result`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func robotSummary(state *engine.GridState) string {
	if state == nil || state.Robot == nil {
		return "not placed"
	}
	return fmt.Sprintf("%d,%d,%s", state.Robot.X, state.Robot.Y, state.Robot.Heading)
}

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\nCommands: %d\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		session.TotalCommands,
		formatGridState(session.State))
}

var headingGlyphs = map[string]string{
	"NORTH": "^",
	"EAST":  ">",
	"SOUTH": "v",
	"WEST":  "<",
}

// formatGridState draws the table with north at the top
func formatGridState(state *engine.GridState) string {
	if state == nil {
		return "No grid state available"
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Table: %dx%d | Robot: %s\n", state.Width, state.Height, robotSummary(state))

	if state.Width > maxRenderSize || state.Height > maxRenderSize {
		return result.String()
	}

	result.WriteString("\n")
	for y := state.Height - 1; y >= 0; y-- {
		for x := 0; x < state.Width; x++ {
			if state.Robot != nil && state.Robot.X == x && state.Robot.Y == y {
				glyph, ok := headingGlyphs[state.Robot.Heading]
				if !ok {
					glyph = "R"
				}
				result.WriteString(glyph)
			} else {
				result.WriteString(".")
			}
		}
		result.WriteString("\n")
	}

	return result.String()
}

func formatExecResult(result *service.ExecResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run %s: %d operations (%d accepted, %d ignored)\n",
		result.RunID, len(result.Operations), result.Accepted, result.Ignored)

	if len(result.Reports) > 0 {
		b.WriteString("\nREPORT output:\n")
		for _, line := range result.Reports {
			b.WriteString(line + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(formatGridState(result.State))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Command History (Page %d/%d) - Total: %d\n\n",
		history.Page, history.TotalPages, history.TotalCommands)

	for i, entry := range history.Entries {
		num := (history.Page-1)*history.PageSize + i + 1
		status := "✓"
		if !entry.Accepted {
			status = "✗"
		}
		line := fmt.Sprintf("%d. %s %s", num, entry.Operation, status)
		if entry.After != nil {
			line += fmt.Sprintf(" [%d,%d,%s]", entry.After.X, entry.After.Y, entry.After.Heading)
		}
		if entry.Report != "" {
			line += " -> " + entry.Report
		}
		b.WriteString(line + "\n")
	}

	return b.String()
}
