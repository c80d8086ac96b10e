// Package session provides in-memory session management for the robot
// simulator.
//
// Each session owns one grid and the history of commands applied to it.
// Callers may choose an ID (letters, digits, '-' and '_', up to 64
// characters); otherwise a free 4-character hex ID is generated. IDs are
// looked up case-insensitively and sessions are dropped by
// CleanupExpiredSessions once idle for too long. Nothing is
// written to disk; restarting the server starts from an empty set.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", engine.DefaultGridConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sess.ID)
package session
