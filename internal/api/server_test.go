package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/genesis/internal/agents"
	"github.com/talgya/genesis/internal/engine"
	"github.com/talgya/genesis/internal/entropy"
	"github.com/talgya/genesis/internal/persistence"
	"github.com/talgya/genesis/internal/world"
)

func newTestServer(t *testing.T) (*Server, *engine.Scheduler) {
	t.Helper()
	w := world.New(1, 1000)
	events := engine.NewEventLog()
	pub := engine.NewPublisher()
	sched := engine.NewScheduler(w, entropy.New(1), events, pub)
	sched.Seed(5)
	sched.Tick()

	srv := &Server{
		Pub:      pub,
		Sched:    sched,
		Ticker:   engine.NewTicker(sched, 1, time.Second),
		Events:   events,
		AdminKey: "secret",
	}
	return srv, sched
}

func TestStatusEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.handleStatus(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Genesis", body["name"])
	assert.EqualValues(t, 5, body["population"])
}

func TestAgentsEndpointSortedAndAliveOnly(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.handleAgents(rec, httptest.NewRequest(http.MethodGet, "/api/v1/agents", nil))

	var body []struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 5)
	for i := 1; i < len(body); i++ {
		assert.LessOrEqual(t, body[i-1].Name, body[i].Name)
	}
}

func TestAgentDetailResolvesDeceased(t *testing.T) {
	srv, sched := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.handleAgentDetail(rec, httptest.NewRequest(http.MethodGet, "/api/v1/agent/nobody", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	live := sched.LiveAgents()[0]
	rec = httptest.NewRecorder()
	srv.handleAgentDetail(rec, httptest.NewRequest(http.MethodGet, "/api/v1/agent/"+string(live.ID), nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

// The death endpoints serve published snapshots only. The scheduler is
// deliberately nil here: any reach into live simulation state panics.
func TestDeathEndpointsReadOnlyTheSnapshot(t *testing.T) {
	pub := engine.NewPublisher()
	pub.Publish(&engine.WorldSnapshot{
		Tick: 7,
		Deaths: []engine.DeathRecord{
			{ID: "gone", Name: "Vela", Cause: agents.DeathStarvation, Tick: 5},
		},
	})
	srv := &Server{Pub: pub}

	rec := httptest.NewRecorder()
	srv.handleDeaths(rec, httptest.NewRequest(http.MethodGet, "/api/v1/deaths", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var deaths []engine.DeathRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &deaths))
	require.Len(t, deaths, 1)
	assert.Equal(t, "Vela", deaths[0].Name)

	rec = httptest.NewRecorder()
	srv.handleAgentDetail(rec, httptest.NewRequest(http.MethodGet, "/api/v1/agent/gone", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "deceased")
}

func TestAdminAuthRequired(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.adminOnly(srv.handleSpeed)

	// POST without token.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/speed", strings.NewReader(`{"speed":2}`))
	rec := httptest.NewRecorder()
	handler(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// POST with the wrong token.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/speed", strings.NewReader(`{"speed":2}`))
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	handler(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// POST with the right token changes the speed.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/speed", strings.NewReader(`{"speed":2}`))
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	handler(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2.0, srv.Ticker.Speed())

	// GET passes through without auth.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/speed", nil)
	rec = httptest.NewRecorder()
	handler(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminDisabledWithoutKey(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.AdminKey = ""
	handler := srv.adminOnly(srv.handleSpeed)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/speed", strings.NewReader(`{"speed":2}`))
	rec := httptest.NewRecorder()
	handler(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSpawnEnqueuesIntent(t *testing.T) {
	srv, sched := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/spawn", strings.NewReader(`{"count":3}`))
	rec := httptest.NewRecorder()
	srv.handleSpawn(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code)

	before := len(sched.LiveAgents())
	sched.Tick() // intent applies at the boundary
	assert.Equal(t, before+3, len(sched.LiveAgents()))
}

func TestSpawnRejectsNonsense(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, body := range []string{`{"count":0}`, `{"count":-2}`, `{"count":100000}`, `garbage`} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/spawn", strings.NewReader(body))
		rec := httptest.NewRecorder()
		srv.handleSpawn(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
	}
}

func TestEventsEndpointLimit(t *testing.T) {
	srv, _ := newTestServer(t)
	for i := 0; i < 20; i++ {
		srv.Events.Append(engine.Event{Tick: uint64(i), Category: "agent"})
	}

	rec := httptest.NewRecorder()
	srv.handleEvents(rec, httptest.NewRequest(http.MethodGet, "/api/v1/events?limit=5", nil))

	var body []engine.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body, 5)
}

func TestEventsScopeAllReadsPersistedHistory(t *testing.T) {
	srv, _ := newTestServer(t)
	db, err := persistence.Open(filepath.Join(t.TempDir(), "world.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	srv.DB = db

	require.NoError(t, db.SaveEvents([]engine.Event{
		{Tick: 1, Description: "ancient history", Category: "agent"},
		{Tick: 2, Description: "less ancient", Category: "agent"},
	}))

	rec := httptest.NewRecorder()
	srv.handleEvents(rec, httptest.NewRequest(http.MethodGet, "/api/v1/events?scope=all", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body []engine.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 2)
	assert.Equal(t, "ancient history", body[0].Description)

	// Without the scope flag the in-memory ring answers.
	rec = httptest.NewRecorder()
	srv.handleEvents(rec, httptest.NewRequest(http.MethodGet, "/api/v1/events", nil))
	assert.NotContains(t, rec.Body.String(), "ancient history")
}

func TestRateLimiterWindow(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	base := time.Unix(1000, 0)
	rl.now = func() time.Time { return base }

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"), "separate clients get separate windows")
	assert.Greater(t, rl.RetryAfter("1.2.3.4"), 0)

	// Window expiry resets the count.
	rl.now = func() time.Time { return base.Add(2 * time.Minute) }
	assert.True(t, rl.Allow("1.2.3.4"))
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5000"
	assert.Equal(t, "10.0.0.1", clientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", clientIP(r))
}
