package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	svc "LenaAI/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	wsReadLimit   = 1 << 20
	wsIdleTimeout = 60 * time.Second
	wsWriteWait   = 10 * time.Second
)

// newUpgrader accepts handshakes without an Origin header (non-browser
// clients) and browser handshakes from the CORS allowlist. An empty
// allowlist accepts every origin, as the HTTP CORS layer does.
func newUpgrader(allowedOrigins []string) *websocket.Upgrader {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimRight(o, "/")] = true
	}
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(allowed) == 0 {
				return true
			}
			return allowed[strings.TrimRight(origin, "/")]
		},
	}
}

type wsInbound struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ChatWS runs chat exchanges over a websocket. Identity comes from ?user_id=
// in open mode or ?token= in token mode; the token is re-checked on every
// frame so a logout or expiry ends access mid-connection.
//
//	-> {type: "chat", text: string}
//	<- {type: "reply", reply: string}
//	<- {type: "error", error: code, msg: string}
func ChatWS(chat *svc.ChatService, auth svc.TokenAuthenticator, allowedOrigins []string, log zerolog.Logger) gin.HandlerFunc {
	upgrader := newUpgrader(allowedOrigins)
	return func(c *gin.Context) {
		tokenMode := auth != nil
		externalID := strings.TrimSpace(c.Query("user_id"))
		token := strings.TrimSpace(c.Query("token"))

		if tokenMode {
			if _, err := auth.Authenticate(c.Request.Context(), token); err != nil {
				respondError(c, err)
				return
			}
		} else if externalID == "" {
			badRequest(c, "user_id query parameter is required")
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Warn().Err(err).Msg("[ws] upgrade failed")
			return
		}
		defer conn.Close()

		conn.SetReadLimit(wsReadLimit)
		_ = conn.SetReadDeadline(time.Now().Add(wsIdleTimeout))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsIdleTimeout))
		})

		write := func(v any) error {
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			return conn.WriteJSON(v)
		}

		ctx := c.Request.Context()
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Debug().Err(err).Msg("[ws] connection closed")
				}
				return
			}
			_ = conn.SetReadDeadline(time.Now().Add(wsIdleTimeout))

			var in wsInbound
			if err := json.Unmarshal(raw, &in); err != nil || !strings.EqualFold(strings.TrimSpace(in.Type), "chat") {
				if write(gin.H{"type": "error", "error": "invalid_input", "msg": "expected {\"type\":\"chat\",\"text\":...}"}) != nil {
					return
				}
				continue
			}

			var reply string
			if tokenMode {
				reply, err = chat.HandleAuthenticatedChat(ctx, token, in.Text)
			} else {
				reply, err = chat.HandleChat(ctx, externalID, in.Text)
			}
			if err != nil {
				e := classify(err)
				if write(gin.H{"type": "error", "error": e.code, "msg": e.msg}) != nil {
					return
				}
				if errors.Is(err, svc.ErrAuth) {
					_ = conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unauthorized"),
						time.Now().Add(wsWriteWait))
					return
				}
				continue
			}
			if write(gin.H{"type": "reply", "reply": reply}) != nil {
				return
			}
		}
	}
}
