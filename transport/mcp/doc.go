// Package mcp exposes the robot simulator to AI agents over the Model
// Context Protocol.
//
// The Client is a thin proxy: every tool call becomes a request to the
// REST API and the JSON response is rendered as text, including a drawing
// of the table with north at the top.
//
// Tools:
//   - create_session, list_sessions, get_session
//   - robot_state, execute_commands, reset_robot, command_history
//   - run_script, list_configs, robot_instructions
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//
//	// stdio transport
//	server.ServeStdio(client.GetMCPServer())
//
//	// or mounted on the HTTP server
//	response := client.GetMCPServer().HandleMessage(ctx, body)
package mcp
