package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/psds-microservice/license-tracker/internal/service"
)

// loginToken is the fixed opaque token handed out on success; no sessions
// are issued beyond it.
const loginToken = "dummy_token_123"

type AuthHandler struct {
	verifier service.CredentialVerifier
}

func NewAuthHandler(verifier service.CredentialVerifier) *AuthHandler {
	return &AuthHandler{verifier: verifier}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Username and password are required"})
		return
	}

	ok, err := h.verifier.Verify(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		log.Error().Err(err).Str("username", req.Username).Msg("login: credential lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error during login", "error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid username or password"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Login successful", "token": loginToken})
}
