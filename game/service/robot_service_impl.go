package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wricardo/tabletop-robot/game/command"
	"github.com/wricardo/tabletop-robot/game/engine"
)

// robotServiceImpl implements the RobotService interface
type robotServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// NewRobotService creates a new robot service instance
func NewRobotService(sessions SessionManager, configs ConfigManager) RobotService {
	return &robotServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// CreateSession creates a new robot session on the named grid. An empty
// sessionID lets the session manager pick one.
func (s *robotServiceImpl) CreateSession(ctx context.Context, sessionID, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	config, err := s.resolveConfig(configName)
	if err != nil {
		return nil, err
	}

	sess, err := s.sessions.Create(sessionID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return s.sessionInfo(sess), nil
}

// GetSession retrieves session information
func (s *robotServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *robotServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *robotServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// Execute runs a script against the session grid. The session only changes
// when the whole script succeeds.
func (s *robotServiceImpl) Execute(ctx context.Context, sessionID, script string, lenient bool) (*ExecResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	result, final, err := run(sess.Grid, script, lenient)
	if err != nil {
		return nil, err
	}
	result.SessionID = sess.ID

	now := time.Now()
	for _, step := range result.Steps {
		sess.History = append(sess.History, HistoryEntry{Step: step, RunID: result.RunID, Timestamp: now})
	}
	sess.Grid = final

	return result, nil
}

// Reset removes the robot from the session grid. History is kept.
func (s *robotServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GridState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	grid, err := engine.NewGridFromConfig(sess.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to reset grid: %w", err)
	}
	sess.Grid = grid

	state := grid.State()
	return &state, nil
}

// RunScript runs a script on a fresh grid without creating a session
func (s *robotServiceImpl) RunScript(ctx context.Context, configName, script string, lenient bool) (*ExecResult, error) {
	s.mu.RLock()
	config, err := s.resolveConfig(configName)
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	grid, err := engine.NewGridFromConfig(config)
	if err != nil {
		return nil, err
	}

	result, _, err := run(grid, script, lenient)
	return result, err
}

// GetState returns the current grid state
func (s *robotServiceImpl) GetState(ctx context.Context, sessionID string) (*engine.GridState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	state := sess.Grid.State()
	return &state, nil
}

// GetHistory returns paginated command history
func (s *robotServiceImpl) GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit < 1 {
		opts.Limit = 20
	}

	entries := make([]HistoryEntry, len(sess.History))
	copy(entries, sess.History)
	if opts.Order == "desc" {
		for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
			entries[i], entries[j] = entries[j], entries[i]
		}
	}

	total := len(entries)
	totalPages := (total + opts.Limit - 1) / opts.Limit
	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return &HistoryResponse{
		Entries:       entries[start:end],
		TotalCommands: total,
		Page:          opts.Page,
		PageSize:      opts.Limit,
		TotalPages:    totalPages,
		HasNext:       opts.Page < totalPages,
		HasPrevious:   opts.Page > 1,
	}, nil
}

// ListConfigs returns all available configurations
func (s *robotServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific configuration
func (s *robotServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GridConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a configuration
func (s *robotServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GridConfig) error {
	return s.configs.SaveConfig(configName, config)
}

func (s *robotServiceImpl) resolveConfig(configName string) (*engine.GridConfig, error) {
	if configName == "" {
		return s.configs.GetDefault(), nil
	}

	config, err := s.configs.LoadConfig(configName)
	if err == nil {
		return config, nil
	}

	if errors.Is(err, ErrConfigNotFound) {
		available, listErr := s.configs.ListConfigs()
		if listErr == nil && len(available) > 0 {
			ids := make([]string, 0, len(available))
			for _, cfg := range available {
				ids = append(ids, cfg.ConfigID)
			}
			return nil, fmt.Errorf("%w: '%s', available configs: %v", ErrConfigNotFound, configName, ids)
		}
		return nil, fmt.Errorf("%w: '%s', use /api/configs to list available configurations", ErrConfigNotFound, configName)
	}
	return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
}

// getSession looks up a session and marks it accessed. Session fields are
// guarded by s.mu, so callers must hold the write lock.
func (s *robotServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

func (s *robotServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	state := sess.Grid.State()
	configName := ""
	if sess.Config != nil {
		configName = sess.Config.Name
	}
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configName,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		State:          &state,
		GridConfig:     sess.Config,
		TotalCommands:  len(sess.History),
	}
}

// run parses and folds script over grid, collecting steps and reports
func run(grid *engine.Grid, script string, lenient bool) (*ExecResult, *engine.Grid, error) {
	ops, err := command.Parse(script)
	if err != nil {
		return nil, grid, err
	}

	result := &ExecResult{
		RunID:      uuid.NewString(),
		Operations: make([]string, len(ops)),
		Steps:      make([]command.Step, 0, len(ops)),
		Reports:    []string{},
	}
	for i, op := range ops {
		result.Operations[i] = op.String()
	}

	var reports bytes.Buffer
	opts := []command.Option{
		command.WithReporter(&reports),
		command.WithObserver(func(step command.Step) {
			result.Steps = append(result.Steps, step)
			if step.Accepted {
				result.Accepted++
			} else {
				result.Ignored++
			}
		}),
	}
	if lenient {
		opts = append(opts, command.WithLenientActions())
	}

	final, err := command.New(opts...).Apply(grid, ops)
	if err != nil {
		return nil, grid, err
	}

	if out := strings.TrimSpace(reports.String()); out != "" {
		result.Reports = strings.Split(out, "\n")
	}
	state := final.State()
	result.State = &state

	return result, final, nil
}
