// Package service provides the business logic layer for the robot simulator.
//
// The service package implements:
//   - Multi-session robot management
//   - Configuration lookup for grid dimensions
//   - Script execution against a session's grid
//   - Stateless one-shot script runs
//   - Paginated command history
//
// Core Interfaces:
//
// RobotService is the main service interface used by the transports.
// SessionManager handles session storage and ConfigManager resolves grid
// configurations by name.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the engine and command packages. A script is parsed and folded over a
// session's grid as a unit: when any operation fails the session keeps the
// grid it had before the script started.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	robotService := service.NewRobotService(sessionMgr, configMgr)
//
//	info, err := robotService.CreateSession(ctx, "", "standard")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := robotService.Execute(ctx, info.ID, "PLACE 0,0,NORTH MOVE REPORT", false)
package service
