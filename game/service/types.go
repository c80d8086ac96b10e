package service

import (
	"time"

	"github.com/wricardo/tabletop-robot/game/command"
	"github.com/wricardo/tabletop-robot/game/engine"
)

// SessionInfo provides information about a robot session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	State          *engine.GridState  `json:"state"`
	GridConfig     *engine.GridConfig `json:"grid_config"`
	TotalCommands  int                `json:"total_commands"`
}

// ExecResult contains the result of running a command script
type ExecResult struct {
	RunID      string            `json:"run_id"`
	SessionID  string            `json:"session_id,omitempty"`
	Operations []string          `json:"operations"`
	Steps      []command.Step    `json:"steps"`
	Reports    []string          `json:"reports"`
	Accepted   int               `json:"accepted"`
	Ignored    int               `json:"ignored"`
	State      *engine.GridState `json:"state"`
}

// HistoryEntry is one applied operation in a session's history
type HistoryEntry struct {
	command.Step
	RunID     string    `json:"run_id"`
	Timestamp time.Time `json:"timestamp"`
}

// HistoryOptions configures history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated command history
type HistoryResponse struct {
	Entries       []HistoryEntry `json:"entries"`
	TotalCommands int            `json:"total_commands"`
	Page          int            `json:"page"`
	PageSize      int            `json:"page_size"`
	TotalPages    int            `json:"total_pages"`
	HasNext       bool           `json:"has_next"`
	HasPrevious   bool           `json:"has_previous"`
}

// ConfigInfo provides information about a grid configuration
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}
