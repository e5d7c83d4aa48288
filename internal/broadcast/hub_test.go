package broadcast

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/verte-zerg/tuirsvp/internal/engine"
)

type fakeController struct {
	mu      sync.Mutex
	toggles int
	rates   []int
	texts   []string
}

func (f *fakeController) Toggle(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.toggles++
	return nil
}

func (f *fakeController) Escape(context.Context) error { return nil }

func (f *fakeController) SetRate(_ context.Context, wpm int) error {
	if err := engine.ValidateRate(wpm); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rates = append(f.rates, wpm)
	return nil
}

func (f *fakeController) SetText(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	return nil
}

func (f *fakeController) counts() (int, []int, []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.toggles, append([]int(nil), f.rates...), append([]string(nil), f.texts...)
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() {
		if err := conn.Close(); err != nil {
			// Already closed by the server.
			_ = err
		}
	})
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("set deadline: %v", err)
	}
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	msg := readMessage(t, conn)
	if msg.Type != "snapshot" {
		t.Fatalf("expected snapshot, got %s", msg.Type)
	}
	var f Frame
	if err := json.Unmarshal(msg.Data, &f); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	return f
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func TestNewFrame(t *testing.T) {
	f := NewFrame(engine.Snapshot{Status: engine.StatusPlaying, Index: 1, Total: 3, Word: "gamma", Rate: 500})
	if f.Status != "playing" || f.Prefix != "ga" || f.Anchor != "m" || f.Suffix != "ma" {
		t.Fatalf("unexpected frame %+v", f)
	}
	if f.Countdown != nil || f.ToggleLabel != "Pause" {
		t.Fatalf("unexpected frame %+v", f)
	}
	f = NewFrame(engine.Snapshot{Status: engine.StatusCountingDown, Countdown: 0, HasCountdown: true})
	if f.Countdown == nil || *f.Countdown != 0 {
		t.Fatalf("expected countdown 0 in frame")
	}
}

func TestHubSendsLastSnapshotAndUpdates(t *testing.T) {
	hub := NewHub(&fakeController{}, nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	hub.Publish(engine.Snapshot{Status: engine.StatusIdle, Total: 2, Word: "alpha", Rate: 300})
	conn := dial(t, srv)
	if f := readFrame(t, conn); f.Word != "alpha" || f.Status != "idle" {
		t.Fatalf("expected last snapshot on connect, got %+v", f)
	}
	waitFor(t, func() bool { return hub.Clients() == 1 })

	hub.Publish(engine.Snapshot{Status: engine.StatusPlaying, Index: 1, Total: 2, Word: "beta", Rate: 300})
	if f := readFrame(t, conn); f.Word != "beta" || f.Index != 1 {
		t.Fatalf("unexpected frame %+v", f)
	}
}

func TestHubForwardsIntents(t *testing.T) {
	ctrl := &fakeController{}
	hub := NewHub(ctrl, nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()
	conn := dial(t, srv)

	send := func(intent Intent) {
		raw, err := json.Marshal(intent)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if err := conn.WriteJSON(Message{Type: "intent", Data: raw}); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	send(Intent{Action: "toggle"})
	send(Intent{Action: "rate", WPM: 450})
	send(Intent{Action: "text", Text: "new text"})
	waitFor(t, func() bool {
		toggles, rates, texts := ctrl.counts()
		return toggles == 1 && len(rates) == 1 && rates[0] == 450 && len(texts) == 1
	})

	send(Intent{Action: "rate", WPM: 0})
	msg := readMessage(t, conn)
	if msg.Type != "error" {
		t.Fatalf("expected error reply, got %s", msg.Type)
	}

	send(Intent{Action: "jump"})
	if msg := readMessage(t, conn); msg.Type != "error" || !strings.Contains(string(msg.Data), "unknown action") {
		t.Fatalf("expected unknown action error, got %s %s", msg.Type, msg.Data)
	}
}

func TestPageHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	PageHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "/ws") {
		t.Fatalf("unexpected page response %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	PageHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
