package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/tabletop-robot/game/engine"
)

// Errors shared by the session and config managers
var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
	ErrConfigNotFound       = errors.New("configuration not found")
)

// RobotService defines all robot simulation operations
type RobotService interface {
	// Session Management
	CreateSession(ctx context.Context, sessionID, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Robot Operations
	Execute(ctx context.Context, sessionID, script string, lenient bool) (*ExecResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.GridState, error)
	RunScript(ctx context.Context, configName, script string, lenient bool) (*ExecResult, error)

	// Robot State
	GetState(ctx context.Context, sessionID string) (*engine.GridState, error)
	GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GridConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GridConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GridConfig) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles grid configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GridConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GridConfig
	SaveConfig(name string, config *engine.GridConfig) error
}

// Session represents an active robot session. Grid is replaced, never
// mutated, after every successful script.
type Session struct {
	ID             string
	Grid           *engine.Grid
	Config         *engine.GridConfig
	History        []HistoryEntry
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
