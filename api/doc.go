// Package api provides the HTTP REST API for the robot simulator.
//
// Endpoints:
//
// Scripts:
//   - POST /api/run - Run a script on a fresh grid without a session
//
// Session Management:
//   - POST /api/sessions - Create new session ({"id": "lab-1", "config_id": "wide"}, id optional)
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session
//
// Robot Operations:
//   - GET /api/sessions/{id}/state - Current grid state
//   - POST /api/sessions/{id}/commands - Run a script against the session
//   - POST /api/sessions/{id}/reset - Remove the robot from the table
//   - GET /api/sessions/{id}/history - Paginated operation history
//
// Configuration:
//   - GET /api/configs - List available grid configurations
//   - POST /api/configs - Save a grid configuration
//   - GET /api/configs/{name} - Get one configuration
//
// Other:
//   - GET /api/health - Liveness check
//   - GET /ws?session={id} - WebSocket stream of state and report events
//
// Script requests take either a whitespace separated script or a command
// list, plus an optional lenient flag:
//
//	{"script": "PLACE 0,0,NORTH MOVE REPORT"}
//	{"commands": ["PLACE 0,0,NORTH", "MOVE", "REPORT"], "lenient": true}
//
// A session only changes when its whole script is valid. Malformed PLACE
// arguments and unknown actions are answered with 400 and leave the session
// as it was; unknown sessions and configurations answer 404. Creating a
// session with an ID already in use answers 409.
package api
