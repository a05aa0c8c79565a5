package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"aria/client/internal/auth"
	"aria/client/internal/config"
	"aria/client/internal/events"
	"aria/client/internal/focus"
	"aria/client/internal/health"
)

// Handlers is the HTTP control surface over the focus manager. Acquires
// mint a token bound to an internal observer; releases resolve the token
// back to that observer so ownership checks keep working across requests.
type Handlers struct {
	cfg    config.Config
	mgr    *focus.Manager
	events *events.Store

	mu     sync.Mutex
	grants map[string]*grant
}

type grant struct {
	channel  string
	activity string
	obs      *tokenObserver
}

// tokenObserver tracks the latest state delivered for one acquisition.
type tokenObserver struct {
	mu    sync.Mutex
	state focus.State
}

func (o *tokenObserver) OnFocusChanged(s focus.State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

func (o *tokenObserver) State() focus.State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func NewHandlers(cfg config.Config, mgr *focus.Manager, evs *events.Store) *Handlers {
	return &Handlers{cfg: cfg, mgr: mgr, events: evs, grants: make(map[string]*grant)}
}

func (h *Handlers) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	status := health.CheckAll(r.Context(), h.mgr)
	code := http.StatusOK
	if !status.OK {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

func (h *Handlers) HandleListChannels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.mgr.ChannelStates())
}

func (h *Handlers) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.events.List())
}

func (h *Handlers) HandleAcquire(w http.ResponseWriter, r *http.Request, name string) {
	if !h.authorized(w, r) {
		return
	}
	var req struct {
		ActivityID string `json:"activity_id"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.ActivityID == "" {
		req.ActivityID = uuid.NewString()
	}

	obs := &tokenObserver{}
	if !h.mgr.AcquireChannel(name, obs, req.ActivityID) {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "channel not found"})
		return
	}

	token := uuid.NewString()
	h.mu.Lock()
	h.grants[token] = &grant{channel: name, activity: req.ActivityID, obs: obs}
	h.mu.Unlock()

	writeJSON(w, http.StatusAccepted, map[string]any{
		"token":       token,
		"channel":     name,
		"activity_id": req.ActivityID,
	})
}

func (h *Handlers) HandleRelease(w http.ResponseWriter, r *http.Request, name string) {
	if !h.authorized(w, r) {
		return
	}
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "missing token"})
		return
	}

	h.mu.Lock()
	g := h.grants[req.Token]
	h.mu.Unlock()
	if g == nil || g.channel != name {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "unknown acquisition token"})
		return
	}

	released := <-h.mgr.ReleaseChannel(name, g.obs)
	if released {
		h.mu.Lock()
		delete(h.grants, req.Token)
		h.mu.Unlock()
	}
	writeJSON(w, http.StatusOK, map[string]any{"released": released})
}

func (h *Handlers) HandleStop(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(w, r) {
		return
	}
	h.mgr.StopForegroundActivity()
	writeJSON(w, http.StatusAccepted, map[string]any{"status": "accepted"})
}

// authorized enforces the control token on mutating routes when a secret is
// configured. Open when no secret is set.
func (h *Handlers) authorized(w http.ResponseWriter, r *http.Request) bool {
	secret := h.cfg.Control.TokenSecret
	if secret == "" {
		return true
	}
	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(authz, "Bearer ") {
		http.Error(w, "missing bearer token", http.StatusUnauthorized)
		return false
	}
	token := strings.TrimPrefix(authz, "Bearer ")
	if _, _, err := auth.ValidateControlToken(secret, token, "", time.Now(), h.cfg.Control.TokenSkewSecs); err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return false
	}
	return true
}

// DrainTimeout bounds how long shutdown waits for in-flight arbitration.
const DrainTimeout = 5 * time.Second

// Shutdown settles pending arbitration before the process exits.
func (h *Handlers) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), DrainTimeout)
	defer cancel()
	if err := h.mgr.Drain(ctx); err != nil {
		log.Printf("[api] drain on shutdown: %v", err)
	}
	h.mgr.Shutdown()
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
