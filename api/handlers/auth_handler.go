// api/handlers/auth_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/nebula-docstore/api/models"
	"github.com/Annany2002/nebula-docstore/config"
	"github.com/Annany2002/nebula-docstore/internal/auth" // Import internal auth logic
	"github.com/Annany2002/nebula-docstore/internal/domain"
	"github.com/Annany2002/nebula-docstore/internal/storage" // Import storage functions/errors
)

// AuthHandler holds dependencies for authentication handlers.
type AuthHandler struct {
	Repo *storage.Repository
	Cfg  *config.Config
}

// NewAuthHandler creates a new AuthHandler with dependencies.
func NewAuthHandler(repo *storage.Repository, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		Repo: repo,
		Cfg:  cfg,
	}
}

func userResponse(user *domain.User, roles []string) models.UserResponse {
	return models.UserResponse{ID: user.ID, Email: user.Email, DisplayName: user.DisplayName, Roles: roles}
}

// Register handles user registration requests.
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.SignupRequest
	if !bindJSON(c, &req) {
		return
	}

	// Hash the password using the internal auth function
	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}

	user, err := h.Repo.CreateUser(c.Request.Context(), strings.TrimSpace(req.Email), hashedPassword, strings.TrimSpace(req.DisplayName))
	if err != nil {
		_ = c.Error(err) // ErrEmailExists maps to 409
		return
	}

	tokenString, err := auth.GenerateJWT(user.ID, h.Cfg.JWTSecret, h.Cfg.JWTExpiration)
	if err != nil {
		_ = c.Error(err)
		return
	}

	customLog.Printf("Handler: Successfully registered user with email %s", user.Email)
	c.JSON(http.StatusCreated, models.LoginResponse{
		Message: "User registered successfully",
		Token:   tokenString,
		User:    userResponse(user, []string{domain.RoleUser}),
	})
}

// Login handles user login requests and issues JWT on success.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.Repo.GetUserByEmail(c.Request.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			err = auth.ErrInvalidCredentials
		}
		customLog.Warnf("Handler: Login failed for email %s: %v", req.Email, err)
		_ = c.Error(err)
		return
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		customLog.Warnf("Handler: Login attempt failed for email %s: invalid password", user.Email)
		_ = c.Error(auth.ErrInvalidCredentials)
		return
	}

	tokenString, err := auth.GenerateJWT(user.ID, h.Cfg.JWTSecret, h.Cfg.JWTExpiration)
	if err != nil {
		_ = c.Error(err)
		return
	}

	roles, err := h.Repo.GetUserRoles(c.Request.Context(), user.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{Message: "Login successful", Token: tokenString, User: userResponse(user, roles)})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	userId := currentUserID(c)
	user, err := h.Repo.GetUser(c.Request.Context(), userId)
	if err != nil {
		_ = c.Error(err)
		return
	}
	roles, err := h.Repo.GetUserRoles(c.Request.Context(), userId)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userResponse(user, roles)})
}

// UpdateProfile changes the authenticated user's display name.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	name := strings.TrimSpace(req.DisplayName)
	user, err := h.Repo.UpdateUser(c.Request.Context(), currentUserID(c), storage.UserPatch{DisplayName: &name})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userResponse(user, nil)})
}

// ChangePassword replaces the authenticated user's password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req models.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if _, err := h.Repo.UpdateUser(c.Request.Context(), currentUserID(c), storage.UserPatch{PasswordHash: &hashedPassword}); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}
