package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"microwave/internal/models"
	"microwave/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

// mockOperators accepts any bearer token as op unless authErr is set.
type mockOperators struct {
	registerID  int
	registerErr error
	token       string
	loginErr    error
	op          service.Operator
	authErr     error

	lastUsername string
	lastPassword string
	lastToken    string
}

// signedIn returns operators that authenticate every token as operator id.
func signedIn(id int) *mockOperators {
	return &mockOperators{op: service.Operator{ID: id, Name: "tester"}}
}

func (m *mockOperators) Register(_ context.Context, username, password string) (int, error) {
	m.lastUsername = username
	m.lastPassword = password
	return m.registerID, m.registerErr
}
func (m *mockOperators) Login(_ context.Context, username, password string) (string, error) {
	m.lastUsername = username
	m.lastPassword = password
	return m.token, m.loginErr
}
func (m *mockOperators) Authenticate(token string) (service.Operator, error) {
	m.lastToken = token
	if m.authErr != nil {
		return service.Operator{}, m.authErr
	}
	return m.op, nil
}

// mockOven answers every command with the same result and records calls.
type mockOven struct {
	result service.Result
	err    error
	foods  []string

	calls        []string
	lastSeconds  int
	lastFood     string
	lastOperator service.Operator
}

func (m *mockOven) do(ctx context.Context, name string) (service.Result, error) {
	m.calls = append(m.calls, name)
	m.lastOperator, _ = service.OperatorFrom(ctx)
	return m.result, m.err
}

func (m *mockOven) SetTime(ctx context.Context, s int) (service.Result, error) {
	m.lastSeconds = s
	return m.do(ctx, "SetTime")
}
func (m *mockOven) AddTime(ctx context.Context, s int) (service.Result, error) {
	m.lastSeconds = s
	return m.do(ctx, "AddTime")
}
func (m *mockOven) SubtractTime(ctx context.Context, s int) (service.Result, error) {
	m.lastSeconds = s
	return m.do(ctx, "SubtractTime")
}
func (m *mockOven) SelectFood(ctx context.Context, food string) (service.Result, error) {
	m.lastFood = food
	return m.do(ctx, "SelectFood")
}
func (m *mockOven) Start(ctx context.Context) (service.Result, error)      { return m.do(ctx, "Start") }
func (m *mockOven) Stop(ctx context.Context) (service.Result, error)       { return m.do(ctx, "Stop") }
func (m *mockOven) OpenDoor(ctx context.Context) (service.Result, error)   { return m.do(ctx, "OpenDoor") }
func (m *mockOven) CloseDoor(ctx context.Context) (service.Result, error)  { return m.do(ctx, "CloseDoor") }
func (m *mockOven) ToggleDoor(ctx context.Context) (service.Result, error) { return m.do(ctx, "ToggleDoor") }
func (m *mockOven) Foods() []string                                        { return m.foods }

// mockMonitoring returns state, or err once more than okCalls calls were made
// (okCalls == 0 means err is returned from the first call).
type mockMonitoring struct {
	mu      sync.Mutex
	state   models.OvenState
	err     error
	okCalls int
	calls   int
}

func (m *mockMonitoring) GetState(ctx context.Context) (models.OvenState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil && m.calls > m.okCalls {
		return models.OvenState{}, m.err
	}
	return m.state, nil
}

type mockEventLog struct {
	resp         []models.OvenEvent
	err          error
	lastFrom     time.Time
	lastTo       time.Time
	lastType     string
	lastOperator string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.OvenEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	m.lastOperator = f.Operator
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
