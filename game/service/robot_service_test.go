package service_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/tabletop-robot/game/command"
	"github.com/wricardo/tabletop-robot/game/engine"
	"github.com/wricardo/tabletop-robot/game/service"
	"github.com/wricardo/tabletop-robot/game/session"
)

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	sessions map[string]*service.Session
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
	}
}

func (m *MockSessionManager) Create(id string, config *engine.GridConfig) (*service.Session, error) {
	if id == "" {
		id = fmt.Sprintf("test_%d", len(m.sessions)+1)
	}

	if _, exists := m.sessions[id]; exists {
		return nil, fmt.Errorf("%w: %s", service.ErrSessionAlreadyExists, id)
	}

	grid, err := engine.NewGridFromConfig(config)
	if err != nil {
		return nil, err
	}

	session := &service.Session{
		ID:             id,
		Grid:           grid,
		Config:         config,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}

	m.sessions[id] = session
	return session, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	session, exists := m.sessions[id]
	if !exists {
		return nil, service.ErrSessionNotFound
	}
	return session, nil
}

func (m *MockSessionManager) List() []*service.Session {
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return service.ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	if session, exists := m.sessions[id]; exists {
		session.LastAccessedAt = time.Now()
		return nil
	}
	return service.ErrSessionNotFound
}

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	configs map[string]*engine.GridConfig
}

func NewMockConfigManager() *MockConfigManager {
	return &MockConfigManager{
		configs: map[string]*engine.GridConfig{
			"standard": engine.DefaultGridConfig(),
			"wide":     {Name: "wide", Description: "Wide table", Width: 10, Height: 3},
		},
	}
}

func (m *MockConfigManager) LoadConfig(name string) (*engine.GridConfig, error) {
	config, exists := m.configs[name]
	if !exists {
		return nil, service.ErrConfigNotFound
	}
	return config, nil
}

func (m *MockConfigManager) ListConfigs() ([]*service.ConfigInfo, error) {
	var configs []*service.ConfigInfo
	for _, id := range []string{"standard", "wide"} {
		config := m.configs[id]
		configs = append(configs, &service.ConfigInfo{
			Filename: id + ".json",
			ConfigID: id,
			Name:     config.Name,
			Width:    config.Width,
			Height:   config.Height,
		})
	}
	return configs, nil
}

func (m *MockConfigManager) GetDefault() *engine.GridConfig {
	return m.configs["standard"]
}

func (m *MockConfigManager) SaveConfig(name string, config *engine.GridConfig) error {
	if err := engine.ValidateGridConfig(config); err != nil {
		return err
	}
	m.configs[name] = config
	return nil
}

func newTestService() service.RobotService {
	return service.NewRobotService(NewMockSessionManager(), NewMockConfigManager())
}

func TestRobotService_CreateSession(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	t.Run("default config", func(t *testing.T) {
		info, err := svc.CreateSession(ctx, "", "")
		if err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
		if info.ID == "" {
			t.Error("Expected a session ID")
		}
		if info.ConfigName != "standard" {
			t.Errorf("Expected standard config, got %q", info.ConfigName)
		}
		if info.State.Placed {
			t.Error("Expected new session without a robot")
		}
	})

	t.Run("named config", func(t *testing.T) {
		info, err := svc.CreateSession(ctx, "", "wide")
		if err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
		if info.State.Width != 10 || info.State.Height != 3 {
			t.Errorf("Expected 10x3 grid, got %dx%d", info.State.Width, info.State.Height)
		}
	})

	t.Run("chosen ID", func(t *testing.T) {
		info, err := svc.CreateSession(ctx, "lab", "")
		if err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
		if info.ID != "lab" {
			t.Errorf("Expected session ID lab, got %q", info.ID)
		}

		_, err = svc.CreateSession(ctx, "lab", "wide")
		if !errors.Is(err, service.ErrSessionAlreadyExists) {
			t.Errorf("Expected ErrSessionAlreadyExists, got %v", err)
		}
	})

	t.Run("unknown config lists alternatives", func(t *testing.T) {
		_, err := svc.CreateSession(ctx, "", "nope")
		if !errors.Is(err, service.ErrConfigNotFound) {
			t.Fatalf("Expected ErrConfigNotFound, got %v", err)
		}
		if !strings.Contains(err.Error(), "standard") {
			t.Errorf("Expected available configs in error, got %v", err)
		}
	})
}

func TestRobotService_Execute(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		script  string
		reports []string
		final   *engine.RobotState
	}{
		{"move north", "PLACE 0,0,NORTH MOVE REPORT", []string{"0,1,NORTH"}, &engine.RobotState{X: 0, Y: 1, Heading: "NORTH"}},
		{"turn left", "PLACE 0,0,NORTH LEFT REPORT", []string{"0,0,WEST"}, &engine.RobotState{X: 0, Y: 0, Heading: "WEST"}},
		{"combined", "PLACE 1,2,EAST MOVE MOVE LEFT MOVE REPORT", []string{"3,3,NORTH"}, &engine.RobotState{X: 3, Y: 3, Heading: "NORTH"}},
		{"edge", "PLACE 0,0,SOUTH MOVE REPORT", []string{"0,0,SOUTH"}, &engine.RobotState{X: 0, Y: 0, Heading: "SOUTH"}},
		{"no placement", "MOVE LEFT REPORT", []string{}, nil},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			svc := newTestService()
			info, _ := svc.CreateSession(ctx, "", "")

			result, err := svc.Execute(ctx, info.ID, test.script, false)
			if err != nil {
				t.Fatalf("Execute failed: %v", err)
			}
			if result.RunID == "" {
				t.Error("Expected a run ID")
			}
			if result.SessionID != info.ID {
				t.Errorf("Expected session ID %s, got %s", info.ID, result.SessionID)
			}
			if !reflect.DeepEqual(result.Reports, test.reports) {
				t.Errorf("Expected reports %v, got %v", test.reports, result.Reports)
			}
			if !reflect.DeepEqual(result.State.Robot, test.final) {
				t.Errorf("Expected robot %+v, got %+v", test.final, result.State.Robot)
			}

			state, _ := svc.GetState(ctx, info.ID)
			if !reflect.DeepEqual(state.Robot, test.final) {
				t.Errorf("Expected session state %+v, got %+v", test.final, state.Robot)
			}
		})
	}
}

func TestRobotService_ExecuteContinuesFromSessionState(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	info, _ := svc.CreateSession(ctx, "", "")

	if _, err := svc.Execute(ctx, info.ID, "PLACE 0,0,NORTH MOVE", false); err != nil {
		t.Fatal(err)
	}
	result, err := svc.Execute(ctx, info.ID, "RIGHT MOVE REPORT", false)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(result.Reports, []string{"1,1,EAST"}) {
		t.Errorf("Expected [1,1,EAST], got %v", result.Reports)
	}
	if result.Accepted != 3 || result.Ignored != 0 {
		t.Errorf("Expected 3 accepted 0 ignored, got %d/%d", result.Accepted, result.Ignored)
	}
}

func TestRobotService_ExecuteIsAtomic(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	info, _ := svc.CreateSession(ctx, "", "")
	svc.Execute(ctx, info.ID, "PLACE 2,2,NORTH", false)

	tests := []struct {
		name    string
		script  string
		wantErr error
	}{
		{"malformed place", "MOVE PLACE 9,X,NORTH", command.ErrMalformedPlace},
		{"unknown action", "MOVE JUMP MOVE", engine.ErrUnknownAction},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := svc.Execute(ctx, info.ID, test.script, false)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("Expected %v, got %v", test.wantErr, err)
			}

			state, _ := svc.GetState(ctx, info.ID)
			want := &engine.RobotState{X: 2, Y: 2, Heading: "NORTH"}
			if !reflect.DeepEqual(state.Robot, want) {
				t.Errorf("Expected unchanged robot %+v, got %+v", want, state.Robot)
			}

			history, _ := svc.GetHistory(ctx, info.ID, service.HistoryOptions{})
			if history.TotalCommands != 1 {
				t.Errorf("Expected history of 1, got %d", history.TotalCommands)
			}
		})
	}
}

func TestRobotService_ExecuteLenient(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	info, _ := svc.CreateSession(ctx, "", "")

	result, err := svc.Execute(ctx, info.ID, "PLACE 0,0,NORTH JUMP MOVE REPORT", true)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !reflect.DeepEqual(result.Reports, []string{"0,1,NORTH"}) {
		t.Errorf("Expected [0,1,NORTH], got %v", result.Reports)
	}
	if result.Ignored != 1 {
		t.Errorf("Expected 1 ignored operation, got %d", result.Ignored)
	}
}

func TestRobotService_SessionNotFound(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Execute(ctx, "missing", "MOVE", false); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Execute: expected ErrSessionNotFound, got %v", err)
	}
	if _, err := svc.GetState(ctx, "missing"); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("GetState: expected ErrSessionNotFound, got %v", err)
	}
	if _, err := svc.Reset(ctx, "missing"); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Reset: expected ErrSessionNotFound, got %v", err)
	}
	if err := svc.DeleteSession(ctx, "missing"); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("DeleteSession: expected ErrSessionNotFound, got %v", err)
	}
}

func TestRobotService_Reset(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	info, _ := svc.CreateSession(ctx, "", "wide")
	svc.Execute(ctx, info.ID, "PLACE 9,2,NORTH", false)

	state, err := svc.Reset(ctx, info.ID)
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if state.Placed || state.Robot != nil {
		t.Error("Expected robot to be removed")
	}
	if state.Width != 10 {
		t.Errorf("Expected reset to keep the wide table, got width %d", state.Width)
	}

	session, _ := svc.GetSession(ctx, info.ID)
	if session.TotalCommands != 1 {
		t.Errorf("Expected history to survive reset, got %d commands", session.TotalCommands)
	}
}

func TestRobotService_RunScript(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	result, err := svc.RunScript(ctx, "wide", "PLACE 8,2,EAST MOVE MOVE REPORT", false)
	if err != nil {
		t.Fatalf("RunScript failed: %v", err)
	}
	if !reflect.DeepEqual(result.Reports, []string{"9,2,EAST"}) {
		t.Errorf("Expected [9,2,EAST], got %v", result.Reports)
	}
	if result.SessionID != "" {
		t.Error("Expected no session for a one-off run")
	}
	if len(result.Operations) != 4 || result.Operations[0] != "place(8,2,EAST)" {
		t.Errorf("Unexpected operations %v", result.Operations)
	}

	sessions, _ := svc.ListSessions(ctx)
	if len(sessions) != 0 {
		t.Errorf("Expected RunScript to leave no sessions, got %d", len(sessions))
	}
}

func TestRobotService_GetHistory(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	info, _ := svc.CreateSession(ctx, "", "")
	svc.Execute(ctx, info.ID, "MOVE PLACE 0,0,NORTH MOVE MOVE LEFT REPORT", false)

	tests := []struct {
		name    string
		opts    service.HistoryOptions
		count   int
		first   string
		hasNext bool
		hasPrev bool
		pages   int
	}{
		{"defaults", service.HistoryOptions{}, 6, "move", false, false, 1},
		{"first page", service.HistoryOptions{Page: 1, Limit: 4}, 4, "move", true, false, 2},
		{"second page", service.HistoryOptions{Page: 2, Limit: 4}, 2, "left", false, true, 2},
		{"descending", service.HistoryOptions{Page: 1, Limit: 2, Order: "desc"}, 2, "report", true, false, 3},
		{"beyond end", service.HistoryOptions{Page: 5, Limit: 4}, 0, "", false, true, 2},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			history, err := svc.GetHistory(ctx, info.ID, test.opts)
			if err != nil {
				t.Fatalf("GetHistory failed: %v", err)
			}
			if len(history.Entries) != test.count {
				t.Fatalf("Expected %d entries, got %d", test.count, len(history.Entries))
			}
			if test.count > 0 && history.Entries[0].Operation != test.first {
				t.Errorf("Expected first entry %q, got %q", test.first, history.Entries[0].Operation)
			}
			if history.HasNext != test.hasNext || history.HasPrevious != test.hasPrev {
				t.Errorf("Expected next=%v prev=%v, got next=%v prev=%v",
					test.hasNext, test.hasPrev, history.HasNext, history.HasPrevious)
			}
			if history.TotalPages != test.pages {
				t.Errorf("Expected %d pages, got %d", test.pages, history.TotalPages)
			}
			if history.TotalCommands != 6 {
				t.Errorf("Expected 6 total commands, got %d", history.TotalCommands)
			}
		})
	}
}

func TestRobotService_Configs(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	configs, err := svc.ListConfigs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(configs) != 2 {
		t.Errorf("Expected 2 configs, got %d", len(configs))
	}

	config := &engine.GridConfig{Name: "tiny", Width: 2, Height: 2}
	if err := svc.SaveConfig(ctx, "tiny", config); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	loaded, err := svc.LoadConfig(ctx, "tiny")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Width != 2 {
		t.Errorf("Expected width 2, got %d", loaded.Width)
	}
}

// TestRobotService_ConcurrentAccess exercises every session path at once
// against the real session manager; run with -race.
func TestRobotService_ConcurrentAccess(t *testing.T) {
	manager := session.NewManager()
	svc := service.NewRobotService(manager, NewMockConfigManager())
	ctx := context.Background()

	info, err := svc.CreateSession(ctx, "", "")
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if _, err := svc.GetSession(ctx, info.ID); err != nil {
					t.Errorf("GetSession failed: %v", err)
					return
				}
				switch j % 4 {
				case 0:
					svc.GetState(ctx, info.ID)
				case 1:
					svc.GetHistory(ctx, info.ID, service.HistoryOptions{Limit: 5})
				case 2:
					svc.ListSessions(ctx)
				case 3:
					if n == 0 {
						svc.Execute(ctx, info.ID, "PLACE 0,0,NORTH MOVE REPORT", false)
					}
					manager.CleanupExpiredSessions(time.Hour)
				}
			}
		}(i)
	}
	wg.Wait()

	history, err := svc.GetHistory(ctx, info.ID, service.HistoryOptions{Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if history.TotalCommands != 25*3 {
		t.Errorf("Expected 75 history entries, got %d", history.TotalCommands)
	}
}
