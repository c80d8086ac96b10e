// Package websocket pushes live robot updates to browser clients.
//
// A central Hub owns every connection. Clients join a session through the
// ?session= query parameter and only receive messages for that session.
// All hub state is owned by the Run goroutine; every other method talks to
// it over channels.
//
// Outgoing messages are JSON objects:
//
//	{"session_id": "a1b2", "event": "state_update", "state": {...}}
//	{"session_id": "a1b2", "event": "report", "data": ["0,1,NORTH"]}
//
// Incoming messages are read only to keep the connection alive.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	defer hub.Stop()
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
package websocket
