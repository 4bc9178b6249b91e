package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"chickencoop_bridge/internal/models"
	"chickencoop_bridge/internal/reconciler"
	"chickencoop_bridge/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockCommands struct {
	result  service.CommandResult
	err     error
	lastCmd models.Command
	calls   int
}

func (m *mockCommands) Submit(ctx context.Context, cmd models.Command) (service.CommandResult, error) {
	m.calls++
	m.lastCmd = cmd
	return m.result, m.err
}

// mockMonitoring serves state from a real reconciler so subscriptions behave.
type mockMonitoring struct {
	rec *reconciler.Reconciler
}

func newMockMonitoring() *mockMonitoring {
	return &mockMonitoring{rec: reconciler.New()}
}

func (m *mockMonitoring) Snapshot() models.Snapshot { return m.rec.Snapshot() }
func (m *mockMonitoring) Status() service.StatusView {
	return service.StatusView{
		Temperature: m.rec.Read(models.KindTemperature),
		FanStatus:   m.rec.Read(models.KindFanStatus),
	}
}
func (m *mockMonitoring) Statuses() service.StatusesView {
	return service.StatusesView{
		CycleStatus:    m.rec.Read(models.KindCycleStatus),
		SegmentInfo:    m.rec.Read(models.KindSegmentInfo),
		ObstacleStatus: m.rec.Read(models.KindObstacleStatus),
	}
}
func (m *mockMonitoring) Subscribe(kinds ...models.Kind) *reconciler.Subscription {
	return m.rec.Subscribe(kinds...)
}

type mockHistory struct {
	readings    []models.Reading
	readingSum  models.ReadingSummary
	coopStats   []models.CoopStats
	coopSum     models.CoopStatsSummary
	sales       []models.SalesLog
	salesSum    models.SalesSummary
	err         error
	lastFilter  models.HistoryFilter
	lastSummary bool

	lastCoopIn  service.CoopStatsInput
	lastSalesIn service.SalesInput
}

func (m *mockHistory) ListReadings(ctx context.Context, f models.HistoryFilter) ([]models.Reading, error) {
	m.lastFilter, m.lastSummary = f, false
	return m.readings, m.err
}
func (m *mockHistory) SummarizeReadings(ctx context.Context, f models.HistoryFilter) (models.ReadingSummary, error) {
	m.lastFilter, m.lastSummary = f, true
	return m.readingSum, m.err
}
func (m *mockHistory) RecordCoopStats(ctx context.Context, in service.CoopStatsInput) (models.CoopStats, error) {
	m.lastCoopIn = in
	if m.err != nil {
		return models.CoopStats{}, m.err
	}
	return models.CoopStats{Seq: 1, BirdCount: in.BirdCount, EggCount: in.EggCount, AilingBirdCount: in.AilingBirdCount}, nil
}
func (m *mockHistory) ListCoopStats(ctx context.Context, f models.HistoryFilter) ([]models.CoopStats, error) {
	m.lastFilter, m.lastSummary = f, false
	return m.coopStats, m.err
}
func (m *mockHistory) SummarizeCoopStats(ctx context.Context, f models.HistoryFilter) (models.CoopStatsSummary, error) {
	m.lastFilter, m.lastSummary = f, true
	return m.coopSum, m.err
}
func (m *mockHistory) RecordSales(ctx context.Context, in service.SalesInput) (models.SalesLog, error) {
	m.lastSalesIn = in
	if m.err != nil {
		return models.SalesLog{}, m.err
	}
	return models.SalesLog{Seq: 1, BirdsSold: in.BirdsSold, EggsSold: in.EggsSold}, nil
}
func (m *mockHistory) ListSales(ctx context.Context, f models.HistoryFilter) ([]models.SalesLog, error) {
	m.lastFilter, m.lastSummary = f, false
	return m.sales, m.err
}
func (m *mockHistory) SummarizeSales(ctx context.Context, f models.HistoryFilter) (models.SalesSummary, error) {
	m.lastFilter, m.lastSummary = f, true
	return m.salesSum, m.err
}

type mockHealth struct {
	report service.HealthReport

	mu       sync.Mutex
	fault    service.StorageFault
	hasFault bool
}

func (m *mockHealth) Check(ctx context.Context) service.HealthReport { return m.report }

func (m *mockHealth) StorageFault() (service.StorageFault, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fault, m.hasFault
}

func (m *mockHealth) setFault(f service.StorageFault) {
	m.mu.Lock()
	m.fault, m.hasFault = f, true
	m.mu.Unlock()
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

// doAuthed sends an authorized request with an optional JSON body.
func doAuthed(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	for k, vv := range authHeader("valid") {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
