package streamws

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	ws "nhooyr.io/websocket"

	"aria/client/internal/auth"
	"aria/client/internal/config"
)

type Server struct {
	Cfg config.Config
	Hub *Hub
}

func NewServer(cfg config.Config, hub *Hub) *Server {
	return &Server{Cfg: cfg, Hub: hub}
}

// HandleStream upgrades the request and subscribes the client to the focus
// event stream until it disconnects.
func (s *Server) HandleStream(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("client_id")
	if clientID == "" {
		clientID = uuid.NewString()
	}

	if secret := s.Cfg.Control.TokenSecret; secret != "" {
		authz := r.Header.Get("Authorization")
		if !strings.HasPrefix(authz, "Bearer ") {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		token := strings.TrimPrefix(authz, "Bearer ")
		if _, _, err := auth.ValidateControlToken(secret, token, "", time.Now(), s.Cfg.Control.TokenSkewSecs); err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
	}

	c, err := ws.Accept(w, r, nil)
	if err != nil {
		log.Printf("[streamws] accept: %v", err)
		return
	}
	s.Hub.Replace(clientID, c)

	// Subscribers only listen; the read loop just watches for close.
	ctx := r.Context()
	for {
		if _, _, err := c.Read(ctx); err != nil {
			break
		}
	}
	_ = c.Close(ws.StatusNormalClosure, "done")
	s.Hub.Remove(clientID)
}
