package api

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"chathub/internal/auth"
	"chathub/internal/message"
	"chathub/internal/user"
)

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleSignup(c *gin.Context) {
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	u, err := s.d.Users.Create(req.Username, req.Password)
	switch {
	case errors.Is(err, user.ErrUsernameTooShort), errors.Is(err, user.ErrPasswordTooShort):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, user.ErrUsernameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
		return
	case err != nil:
		log.Printf("signup: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create user"})
		return
	}

	token, err := auth.Sign(s.d.Secret, u.ID, u.Username, auth.TokenTTL)
	if err != nil {
		log.Printf("signup: sign token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	s.d.Presence.Touch(u.Username)

	c.JSON(http.StatusCreated, gin.H{"token": token, "user": u})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	u, err := s.d.Users.Verify(req.Username, req.Password)
	switch {
	case errors.Is(err, user.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	case errors.Is(err, user.ErrBadCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "incorrect password"})
		return
	case err != nil:
		log.Printf("login: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	token, err := auth.Sign(s.d.Secret, u.ID, u.Username, auth.TokenTTL)
	if err != nil {
		log.Printf("login: sign token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	s.d.Presence.Touch(u.Username)

	c.JSON(http.StatusOK, gin.H{"token": token, "user": u})
}

func (s *Server) handleListMessages(c *gin.Context) {
	msgs, err := s.d.Messages.List()
	if err != nil {
		log.Printf("list messages: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

func (s *Server) handlePostMessage(c *gin.Context) {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	// sender comes from the verified claims, never from the body
	sender := c.GetString(auth.CtxUsernameKey)
	m, err := s.d.Messages.Append(sender, req.Text)
	if errors.Is(err, message.ErrEmptyText) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message text is required"})
		return
	}
	if err != nil {
		log.Printf("post message: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store message"})
		return
	}

	s.publish(m)
	if s.d.Bot != nil {
		s.d.Bot.Notify(m)
	}

	c.JSON(http.StatusCreated, gin.H{"message": m})
}

func (s *Server) handleOnlineUsers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"users": s.d.Presence.Online()})
}

func (s *Server) handleHealth(c *gin.Context) {
	users, err := s.d.Users.Count()
	if err != nil {
		log.Printf("health: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unhealthy"})
		return
	}
	messages, err := s.d.Messages.Count()
	if err != nil {
		log.Printf("health: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unhealthy"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "OK",
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
		"totalUsers":    users,
		"totalMessages": messages,
	})
}
