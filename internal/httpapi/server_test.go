package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kwabenadarko/navicare/internal/config"
	"github.com/kwabenadarko/navicare/internal/providers"
	"github.com/kwabenadarko/navicare/internal/store"
	"github.com/kwabenadarko/navicare/internal/triage"
	"github.com/kwabenadarko/navicare/internal/voiceio"
)

type stubEngine struct{}

func (stubEngine) Greeting(context.Context, string) (string, error) {
	return "Hello, how can I help?", nil
}

func (stubEngine) Triage(_ context.Context, history []triage.Turn, _ string) (triage.Reply, error) {
	if len(history) >= 6 {
		return triage.Reply{
			Complete: true,
			Verdict: &triage.Verdict{
				Level:          triage.LevelRoutine,
				Specialty:      "General Practice",
				Summary:        "Mild symptoms.",
				Recommendation: "Book a primary care visit.",
			},
		}, nil
	}
	return triage.Reply{NextQuestion: "How long has this been going on?"}, nil
}

func (stubEngine) Support(context.Context, []triage.Turn, string) (string, error) {
	return "Happy to help with the platform.", nil
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	cfg := config.Config{
		SessionInactivityTimeout: 2 * time.Minute,
		DefaultLanguage:          "English",
	}
	sessions := triage.NewManager(cfg.SessionInactivityTimeout)
	srv := New(cfg, sessions, stubEngine{}, nil, store.NewMemoryStore(), providers.NewMockDirectory(), voiceio.NewMockSynthesizer(), nil)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return srv, ts
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, _ := json.Marshal(payload)
	res, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s error = %v", url, err)
	}
	return res
}

func decodeBody(t *testing.T, res *http.Response, out any) {
	t.Helper()
	defer res.Body.Close()
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func createSession(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	res := postJSON(t, ts.URL+"/v1/triage/session", map[string]string{"user_id": "user-1"})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want %d", res.StatusCode, http.StatusCreated)
	}
	var created struct {
		SessionID string          `json:"session_id"`
		Greeting  string          `json:"greeting"`
		Snapshot  triage.Snapshot `json:"snapshot"`
	}
	decodeBody(t, res, &created)
	if created.SessionID == "" {
		t.Fatal("missing session_id in create response")
	}
	if created.Greeting != "Hello, how can I help?" {
		t.Fatalf("greeting = %q", created.Greeting)
	}
	if created.Snapshot.State != triage.StateIntake {
		t.Fatalf("state = %q, want intake", created.Snapshot.State)
	}
	return created.SessionID
}

func TestSessionLifecycle(t *testing.T) {
	_, ts := newTestServer(t)
	id := createSession(t, ts)

	res := postJSON(t, ts.URL+"/v1/triage/session/"+id+"/message", map[string]string{"text": "I have a headache"})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("message status = %d, want %d", res.StatusCode, http.StatusOK)
	}
	var snap triage.Snapshot
	decodeBody(t, res, &snap)
	if len(snap.History) != 3 {
		t.Fatalf("history length = %d, want greeting + user + question", len(snap.History))
	}
	last := snap.History[len(snap.History)-1]
	if last.Role != triage.RoleAssistant || last.Text != "How long has this been going on?" {
		t.Fatalf("unexpected last turn %+v", last)
	}

	res = postJSON(t, ts.URL+"/v1/triage/session/"+id+"/message", map[string]string{"text": "   "})
	res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("blank message status = %d, want %d", res.StatusCode, http.StatusBadRequest)
	}

	res = postJSON(t, ts.URL+"/v1/triage/session/"+id+"/reset", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("reset status = %d, want %d", res.StatusCode, http.StatusOK)
	}
	decodeBody(t, res, &snap)
	if snap.State != triage.StateIdle || len(snap.History) != 0 {
		t.Fatalf("reset snapshot %+v", snap)
	}

	res = postJSON(t, ts.URL+"/v1/triage/session/"+id+"/end", nil)
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("end status = %d, want %d", res.StatusCode, http.StatusOK)
	}

	getRes, err := http.Get(ts.URL + "/v1/triage/session/" + id)
	if err != nil {
		t.Fatalf("GET session error = %v", err)
	}
	getRes.Body.Close()
	if getRes.StatusCode != http.StatusNotFound {
		t.Fatalf("get after end status = %d, want %d", getRes.StatusCode, http.StatusNotFound)
	}
}

func TestSwitchModeValidation(t *testing.T) {
	_, ts := newTestServer(t)
	id := createSession(t, ts)

	res := postJSON(t, ts.URL+"/v1/triage/session/"+id+"/mode", map[string]string{"mode": "support"})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("mode status = %d, want %d", res.StatusCode, http.StatusOK)
	}
	var snap triage.Snapshot
	decodeBody(t, res, &snap)
	if snap.Mode != triage.ModeSupport {
		t.Fatalf("mode = %q, want support", snap.Mode)
	}

	res = postJSON(t, ts.URL+"/v1/triage/session/"+id+"/mode", map[string]string{"mode": "broadcast"})
	res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad mode status = %d, want %d", res.StatusCode, http.StatusBadRequest)
	}
}

func TestMessageUnknownSession(t *testing.T) {
	_, ts := newTestServer(t)
	res := postJSON(t, ts.URL+"/v1/triage/session/nope/message", map[string]string{"text": "hello"})
	res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusNotFound)
	}
}

func TestSpeakReturnsWAV(t *testing.T) {
	_, ts := newTestServer(t)
	id := createSession(t, ts)

	res := postJSON(t, ts.URL+"/v1/triage/session/"+id+"/speak", map[string]string{"text": "Please see a doctor."})
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("speak status = %d, want %d", res.StatusCode, http.StatusOK)
	}
	if ct := res.Header.Get("Content-Type"); ct != "audio/wav" {
		t.Fatalf("content type = %q, want audio/wav", ct)
	}
	var body bytes.Buffer
	if _, err := body.ReadFrom(res.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	if body.Len() < 44 || string(body.Bytes()[:4]) != "RIFF" {
		t.Fatal("response is not a WAV file")
	}
}

func TestProviderSearchAndSaved(t *testing.T) {
	_, ts := newTestServer(t)

	res := postJSON(t, ts.URL+"/v1/providers/search", providers.Query{Specialty: "Dermatology", Location: "Accra"})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("search status = %d, want %d", res.StatusCode, http.StatusOK)
	}
	var searchOut struct {
		Providers []providers.Record `json:"providers"`
	}
	decodeBody(t, res, &searchOut)
	if len(searchOut.Providers) == 0 {
		t.Fatal("expected search results")
	}

	res = postJSON(t, ts.URL+"/v1/providers/search", providers.Query{Location: "Accra"})
	res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid search status = %d, want %d", res.StatusCode, http.StatusBadRequest)
	}

	first := searchOut.Providers[0]
	res = postJSON(t, ts.URL+"/v1/providers/saved", map[string]any{"user_id": "user-1", "provider": first})
	var toggled struct {
		Saved bool `json:"saved"`
	}
	decodeBody(t, res, &toggled)
	if !toggled.Saved {
		t.Fatal("first toggle should save")
	}

	listRes, err := http.Get(ts.URL + "/v1/providers/saved?user_id=user-1")
	if err != nil {
		t.Fatalf("GET saved error = %v", err)
	}
	var listOut struct {
		Providers []providers.Record `json:"providers"`
	}
	decodeBody(t, listRes, &listOut)
	if len(listOut.Providers) != 1 {
		t.Fatalf("saved list length = %d, want 1", len(listOut.Providers))
	}

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/v1/providers/saved", bytes.NewReader(mustJSON(t, map[string]any{"user_id": "user-1", "provider": first})))
	req.Header.Set("Content-Type", "application/json")
	delRes, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE saved error = %v", err)
	}
	delRes.Body.Close()
	if delRes.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d, want %d", delRes.StatusCode, http.StatusOK)
	}

	listRes, err = http.Get(ts.URL + "/v1/providers/saved?user_id=user-1")
	if err != nil {
		t.Fatalf("GET saved error = %v", err)
	}
	decodeBody(t, listRes, &listOut)
	if len(listOut.Providers) != 0 {
		t.Fatalf("saved list length = %d, want 0", len(listOut.Providers))
	}
}

func TestSubscriptionEndpoints(t *testing.T) {
	_, ts := newTestServer(t)

	res, err := http.Get(ts.URL + "/v1/subscription?user_id=user-1")
	if err != nil {
		t.Fatalf("GET subscription error = %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("empty subscription status = %d, want %d", res.StatusCode, http.StatusNotFound)
	}

	res = postJSON(t, ts.URL+"/v1/subscription", map[string]any{
		"user_id":     "user-1",
		"full_name":   "Ama Mensah",
		"momo_number": "0244000000",
	})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("save subscription status = %d, want %d", res.StatusCode, http.StatusCreated)
	}
	var sub store.Subscription
	decodeBody(t, res, &sub)
	if sub.AmountGhs != 25 {
		t.Fatalf("AmountGhs = %v, want the default 25", sub.AmountGhs)
	}

	res, err = http.Get(ts.URL + "/v1/subscription?user_id=user-1")
	if err != nil {
		t.Fatalf("GET subscription error = %v", err)
	}
	decodeBody(t, res, &sub)
	if sub.FullName != "Ama Mensah" {
		t.Fatalf("FullName = %q", sub.FullName)
	}
}

func TestHealthAndReady(t *testing.T) {
	_, ts := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		res, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s error = %v", path, err)
		}
		res.Body.Close()
		if res.StatusCode != http.StatusOK {
			t.Fatalf("GET %s status = %d, want %d", path, res.StatusCode, http.StatusOK)
		}
	}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}
