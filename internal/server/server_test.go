package server

import (
	"bytes"
	"encoding/json"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Splonchpad/internal/config"
	"Splonchpad/internal/render"
	"Splonchpad/internal/state"
)

type fakeClock struct{ ns atomic.Int64 }

func newFakeClock() *fakeClock {
	c := &fakeClock{}
	c.ns.Store(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).UnixNano())
	return c
}

func (c *fakeClock) Now() time.Time          { return time.Unix(0, c.ns.Load()) }
func (c *fakeClock) Advance(d time.Duration) { c.ns.Add(int64(d)) }

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	return newClockedServer(t, time.Now)
}

func newClockedServer(t *testing.T, now func() time.Time) (*Server, *httptest.Server) {
	t.Helper()
	glyphs, err := render.LoadGlyphs("")
	require.NoError(t, err)
	s := New(config.DefaultConfig(), glyphs, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.now = now
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.Close()
	})
	return s, ts
}

func createSession(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	res, err := http.Post(ts.URL+"/api/sessions", "application/json", nil)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusCreated, res.StatusCode)

	var body struct{ ID string }
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	require.NotEmpty(t, body.ID)
	return body.ID
}

func getSummary(t *testing.T, ts *httptest.Server, id string) summary {
	t.Helper()
	res, err := http.Get(ts.URL + "/api/sessions/" + id)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	var sum summary
	require.NoError(t, json.NewDecoder(res.Body).Decode(&sum))
	return sum
}

func TestIndexPage(t *testing.T) {
	_, ts := newTestServer(t)
	res, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	body, _ := io.ReadAll(res.Body)
	assert.Contains(t, string(body), `<canvas id="pad"`)
}

func TestCreateAndSummarise(t *testing.T) {
	s, ts := newTestServer(t)
	id := createSession(t, ts)
	assert.Equal(t, 1, s.Sessions())

	sum := getSummary(t, ts, id)
	assert.Equal(t, id, sum.ID)
	assert.Equal(t, 256, sum.Width)
	assert.Equal(t, 4, sum.ExportScale)
	assert.Equal(t, "idle", sum.Mode)
	assert.Equal(t, state.ToolMarker, sum.Tool.Kind)
	assert.Equal(t, "#000000", sum.Tool.Color)
	assert.Equal(t, []string{"🎉", "⭐", "🐸"}, sum.Palette.Stickers)
	assert.Len(t, sum.Palette.Colors, 5)
	assert.Empty(t, sum.Entities)
	assert.Equal(t, uint64(1), sum.Frames)
}

func TestUnknownSession(t *testing.T) {
	_, ts := newTestServer(t)
	for _, path := range []string{
		"/api/sessions/not-a-uuid",
		"/api/sessions/9b2f3a55-7c1e-4f0e-9a57-3d3c1b1e2f00/frame.png",
		"/api/sessions/9b2f3a55-7c1e-4f0e-9a57-3d3c1b1e2f00/export",
	} {
		res, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		res.Body.Close()
		assert.Equal(t, http.StatusNotFound, res.StatusCode, path)
	}
}

func TestLookupWrapsSentinel(t *testing.T) {
	s, _ := newTestServer(t)
	_, err := s.lookup("9b2f3a55-7c1e-4f0e-9a57-3d3c1b1e2f00")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestFrameAndExport(t *testing.T) {
	s, ts := newTestServer(t)
	id := createSession(t, ts)
	rm, err := s.lookup(id)
	require.NoError(t, err)
	rm.do(func(sess *state.Session) {
		sess.PointerDown(state.Pt(10, 20))
		sess.PointerMove(state.Pt(50, 20))
		sess.PointerUp()
		sess.PointerDown(state.Pt(60, 100))
		sess.PointerMove(state.Pt(120, 100))
	})

	res, err := http.Get(ts.URL + "/api/sessions/" + id + "/frame.png")
	require.NoError(t, err)
	frame, err := png.Decode(res.Body)
	res.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, 256, frame.Bounds().Dx())
	r, _, _, _ := frame.At(90, 100).RGBA()
	assert.Less(t, r, uint32(0x8000), "draft is visible interactively")

	res, err = http.Get(ts.URL + "/api/sessions/" + id + "/export?format=png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", res.Header.Get("Content-Type"))
	assert.Contains(t, res.Header.Get("Content-Disposition"), "attachment")
	out, err := png.Decode(res.Body)
	res.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, 1024, out.Bounds().Dx())
	r, _, _, _ = out.At(4*30+2, 4*20+2).RGBA()
	assert.Less(t, r, uint32(0x8000), "committed stroke is exported")
	r, _, _, _ = out.At(360, 400).RGBA()
	assert.Equal(t, uint32(0xffff), r, "draft is not exported")

	res, err = http.Get(ts.URL + "/api/sessions/" + id + "/export?format=pdf")
	require.NoError(t, err)
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()
	assert.Equal(t, "application/pdf", res.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF-")))

	res, err = http.Get(ts.URL + "/api/sessions/" + id + "/export?format=svg")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func readUpdate(t *testing.T, c *websocket.Conn) notice {
	t.Helper()
	_ = c.SetReadDeadline(time.Now().Add(3 * time.Second))
	kind, data, err := c.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.TextMessage, kind)
	var n notice
	require.NoError(t, json.Unmarshal(data, &n))

	kind, data, err = c.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.BinaryMessage, kind)
	_, err = png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return n
}

func dialSession(t *testing.T, ts *httptest.Server, id string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/sessions/" + id + "/ws"
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestWebsocketDrawing(t *testing.T) {
	_, ts := newTestServer(t)
	id := createSession(t, ts)

	c := dialSession(t, ts, id)
	assert.Equal(t, "drawing-changed", readUpdate(t, c).Event)

	require.NoError(t, c.WriteJSON(Command{Type: "pointermove", X: 5, Y: 5}))
	n := readUpdate(t, c)
	assert.Equal(t, "tool-moved", n.Event)
	assert.Equal(t, uint64(2), n.Frame)

	for _, cmd := range []Command{
		{Type: "pointerdown", X: 10, Y: 20},
		{Type: "pointermove", X: 50, Y: 20},
		{Type: "pointerup"},
		{Type: "sticker", Glyph: "⭐", Rotation: 45},
		{Type: "pointerdown", X: 100, Y: 100},
	} {
		require.NoError(t, c.WriteJSON(cmd))
	}
	require.Eventually(t, func() bool { return len(getSummary(t, ts, id).Entities) == 2 }, 2*time.Second, 10*time.Millisecond)

	sum := getSummary(t, ts, id)
	assert.Equal(t, state.KindStroke, sum.Entities[0].Kind)
	assert.Equal(t, 2, sum.Entities[0].Points)
	assert.Equal(t, "⭐", sum.Entities[1].Glyph)
	assert.Equal(t, state.ToolMarker, sum.Tool.Kind, "placing a sticker restores the marker")

	require.NoError(t, c.WriteJSON(Command{Type: "undo"}))
	require.Eventually(t, func() bool {
		s := getSummary(t, ts, id)
		return len(s.Entities) == 1 && s.RedoDepth == 1 && s.Undoable == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestReconnectTakesOverSession(t *testing.T) {
	_, ts := newTestServer(t)
	id := createSession(t, ts)

	first := dialSession(t, ts, id)
	readUpdate(t, first)
	second := dialSession(t, ts, id)
	readUpdate(t, second)

	_ = first.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, _, err := first.ReadMessage()
	assert.Error(t, err, "the earlier peer is disconnected")
	require.Eventually(t, func() bool { return getSummary(t, ts, id).Peers == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, second.WriteJSON(Command{Type: "pointermove", X: 1, Y: 1}))
	assert.Equal(t, "tool-moved", readUpdate(t, second).Event)
}

func TestCommandApply(t *testing.T) {
	s := state.NewSession()
	require.NoError(t, Command{Type: "color", Color: "#e63946"}.Apply(s))
	assert.Equal(t, uint8(230), s.Tool().Color.R)

	require.NoError(t, Command{Type: "marker", Thickness: 8}.Apply(s))
	assert.Equal(t, 8.0, s.Tool().Thickness)
	assert.Equal(t, uint8(230), s.Tool().Color.R, "marker without colour keeps the colour")

	require.NoError(t, Command{Type: "marker", Thickness: 3, Color: "#000"}.Apply(s))
	assert.Equal(t, 3.0, s.Tool().Thickness)
	assert.Equal(t, uint8(0), s.Tool().Color.R)

	assert.Error(t, Command{Type: "color", Color: "blue"}.Apply(s))
	assert.ErrorIs(t, Command{Type: "teleport"}.Apply(s), ErrUnknownCommand)

	require.NoError(t, Command{Type: "custom-sticker", Text: "  "}.Apply(s))
	assert.Equal(t, state.ModeIdle, s.Mode())
	require.NoError(t, Command{Type: "custom-sticker", Text: "hi", Rotation: 90}.Apply(s))
	assert.Equal(t, state.ModeStickerArmed, s.Mode())
	assert.Contains(t, s.Palette().Stickers, "hi")
}

func TestReloadAffectsNewSessions(t *testing.T) {
	s, ts := newTestServer(t)
	first := createSession(t, ts)

	cfg := config.DefaultConfig()
	cfg.Tools.Stickers = []string{"A"}
	s.Reload(cfg)
	second := createSession(t, ts)

	assert.Len(t, getSummary(t, ts, first).Palette.Stickers, 3)
	assert.Equal(t, []string{"A"}, getSummary(t, ts, second).Palette.Stickers)
}

func TestIdleSessionsExpire(t *testing.T) {
	clock := newFakeClock()
	s, ts := newClockedServer(t, clock.Now)
	for range maxSessions {
		createSession(t, ts)
	}
	require.Equal(t, maxSessions, s.Sessions())

	clock.Advance(sessionIdle + time.Minute)
	s.Sweep()
	assert.Equal(t, 0, s.Sessions())

	createSession(t, ts)
	assert.Equal(t, 1, s.Sessions())
}

func TestFullHostEvictsLeastRecentlyUsed(t *testing.T) {
	clock := newFakeClock()
	s, ts := newClockedServer(t, clock.Now)
	ids := make([]string, 0, maxSessions)
	for range maxSessions {
		ids = append(ids, createSession(t, ts))
		clock.Advance(time.Second)
	}
	// using the oldest session makes the second oldest the eviction candidate
	getSummary(t, ts, ids[0])
	clock.Advance(time.Second)

	res, err := http.Post(ts.URL+"/api/sessions", "application/json", nil)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusCreated, res.StatusCode)
	assert.Equal(t, maxSessions, s.Sessions())

	_, err = s.lookup(ids[0])
	assert.NoError(t, err)
	_, err = s.lookup(ids[1])
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestConnectedSessionsSurviveSweep(t *testing.T) {
	clock := newFakeClock()
	s, ts := newClockedServer(t, clock.Now)
	busy := createSession(t, ts)
	idle := createSession(t, ts)

	c := dialSession(t, ts, busy)
	readUpdate(t, c)
	require.Eventually(t, func() bool { return getSummary(t, ts, busy).Peers == 1 }, 2*time.Second, 10*time.Millisecond)

	clock.Advance(sessionIdle + time.Minute)
	s.Sweep()

	_, err := s.lookup(busy)
	assert.NoError(t, err)
	_, err = s.lookup(idle)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
