// Package api wires the stores, the token issuer and the fan-out into a
// gin router.
package api

import (
	"net/http"
	"path/filepath"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"chathub/internal/auth"
	"chathub/internal/bot"
	"chathub/internal/message"
	"chathub/internal/presence"
	"chathub/internal/user"
	"chathub/internal/ws"
	"chathub/pkg/models"
)

type Deps struct {
	Secret   []byte
	Origin   string // "*" allows any origin
	WebDir   string // empty disables the static client
	Users    *user.Store
	Messages *message.Store
	Presence *presence.Tracker
	Hub      *ws.Hub
	Bot      *bot.Responder          // nil when the responder is disabled
	Publish  func(m models.Message) // fan-out to hub/feed; may be nil
}

type Server struct {
	d Deps
}

func New(d Deps) *Server {
	return &Server{d: d}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if s.d.Origin == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{s.d.Origin}
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	if s.d.WebDir != "" {
		r.StaticFile("/", filepath.Join(s.d.WebDir, "index.html"))
		r.Static("/static", s.d.WebDir)
	}

	r.GET("/api/health", s.handleHealth)
	r.POST("/api/signup", s.handleSignup)
	r.POST("/api/login", s.handleLogin)
	r.GET("/ws", ws.Handler(s.d.Hub, s.d.Secret, s.d.Presence))

	authed := r.Group("/api")
	authed.Use(auth.RequireJWT(s.d.Secret, s.d.Presence))
	authed.GET("/messages", s.handleListMessages)
	authed.POST("/messages", s.handlePostMessage)
	authed.GET("/users/online", s.handleOnlineUsers)

	r.NoRoute(func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})
	return r
}

// publish pushes a freshly appended message to the hub and the feed.
func (s *Server) publish(m models.Message) {
	if s.d.Publish != nil {
		s.d.Publish(m)
	}
}
