package auth

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/validation"
)

// Auditor records authentication events.
type Auditor interface {
	LogAuth(userID uint, action string, ipAddr, userAgent string, success bool)
}

// AuthController serves the account endpoints under /api/users.
type AuthController struct {
	service        *Service
	sessionManager *SessionManager
	rateLimiter    *RateLimiter
	auditor        Auditor
}

// NewAuthController creates the controller and its login rate limiter.
// auditor may be nil.
func NewAuthController(service *Service, sessionManager *SessionManager, cfg config.Auth, auditor Auditor) *AuthController {
	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
		rateLimiter:    NewRateLimiter(RateLimitConfigFrom(cfg)),
		auditor:        auditor,
	}
}

// RegisterRoutes registers authentication routes on the router.
func (ac *AuthController) RegisterRoutes(router gin.IRouter) {
	router.GET("/api/auth/csrf", ac.CSRFToken)

	users := router.Group("/api/users")
	users.POST("/register", ac.Register)
	users.POST("/login", ac.Login)
	users.POST("/logout", ac.Logout)
	users.GET("/me", ac.Me)
	users.PUT("/me", ac.UpdateProfile)
	users.PUT("/me/theme", ac.UpdateTheme)
	users.PUT("/me/password", ac.ChangePassword)
	users.POST("/me/token", ac.GenerateToken)
	users.DELETE("/me/token", ac.RevokeToken)
}

// Stop releases the rate limiter's background goroutine.
func (ac *AuthController) Stop() {
	ac.rateLimiter.Stop()
}

type registerRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required"`
}

// Register creates a new account. It does not log the user in.
func (ac *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := ac.service.CreateUser(req.Username, req.Email, req.Password)
	switch {
	case errors.Is(err, ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case isInputError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		log.Printf("[AUTH] Failed to register %q: %v", req.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	ac.audit(c, user.ID, "register", true)
	c.JSON(http.StatusCreated, user)
}

type loginRequest struct {
	// Username or email
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login checks credentials and starts a cookie session.
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	clientIP := c.ClientIP()

	if allowed, retryAfter := ac.rateLimiter.Allow(clientIP, req.Username); !allowed {
		c.Header("Retry-After", retryAfter.String())
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":      "too many login attempts",
			"retryAfter": retryAfter.String(),
		})
		return
	}

	user, err := ac.service.Authenticate(req.Username, req.Password)
	if err != nil {
		ac.rateLimiter.RecordFailure(clientIP, req.Username)
		ac.audit(c, 0, "login", false)

		switch {
		case errors.Is(err, ErrAccountLocked):
			c.JSON(http.StatusLocked, gin.H{"error": err.Error()})
		case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrInvalidPassword):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		default:
			log.Printf("[AUTH] Login failed for %q: %v", req.Username, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log in"})
		}
		return
	}

	ac.rateLimiter.RecordSuccess(clientIP, req.Username)

	if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
		log.Printf("[AUTH] Failed to create session for user %d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	ac.audit(c, user.ID, "login", true)
	c.JSON(http.StatusOK, user)
}

// Logout destroys the session.
func (ac *AuthController) Logout(c *gin.Context) {
	userID := GetUserID(c)
	if err := ac.sessionManager.DestroySession(c.Request); err != nil {
		log.Printf("[AUTH] Failed to destroy session for user %d: %v", userID, err)
	}
	ac.audit(c, userID, "logout", true)
	c.Status(http.StatusNoContent)
}

// Me returns the authenticated user.
func (ac *AuthController) Me(c *gin.Context) {
	user, err := ac.service.GetUserByID(GetUserID(c))
	if errors.Is(err, ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}
	c.JSON(http.StatusOK, user)
}

type profileRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Email    string `json:"email" binding:"required,email,max=254"`
}

// UpdateProfile changes the username and email of the authenticated user.
func (ac *AuthController) UpdateProfile(c *gin.Context) {
	var req profileRequest
	if !bindJSON(c, &req) {
		return
	}
	userID := GetUserID(c)

	user, err := ac.service.UpdateProfile(userID, req.Username, req.Email)
	switch {
	case errors.Is(err, ErrUserExists):
		ac.audit(c, userID, "profile_update", false)
		c.JSON(http.StatusConflict, gin.H{"error": "username or email already taken"})
		return
	case isInputError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	case err != nil:
		log.Printf("[AUTH] Failed to update profile for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}

	ac.audit(c, userID, "profile_update", true)
	c.JSON(http.StatusOK, user)
}

type themeRequest struct {
	Theme string `json:"theme" binding:"required,oneof=light dark"`
}

func (ac *AuthController) UpdateTheme(c *gin.Context) {
	var req themeRequest
	if !bindJSON(c, &req) {
		return
	}
	userID := GetUserID(c)

	user, err := ac.service.UpdateTheme(userID, req.Theme)
	switch {
	case errors.Is(err, ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	case err != nil:
		log.Printf("[AUTH] Failed to update theme for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update theme"})
		return
	}
	c.JSON(http.StatusOK, user)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

func (ac *AuthController) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	userID := GetUserID(c)

	err := ac.service.ChangePassword(userID, req.CurrentPassword, req.NewPassword)
	switch {
	case errors.Is(err, ErrInvalidPassword):
		ac.audit(c, userID, "password_change", false)
		c.JSON(http.StatusBadRequest, gin.H{"error": "current password is incorrect"})
		return
	case errors.Is(err, ErrPasswordTooShort), errors.Is(err, ErrPasswordTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	case err != nil:
		log.Printf("[AUTH] Failed to change password for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to change password"})
		return
	}

	ac.audit(c, userID, "password_change", true)
	c.Status(http.StatusNoContent)
}

// GenerateToken issues a new API token, replacing the previous one.
func (ac *AuthController) GenerateToken(c *gin.Context) {
	userID := GetUserID(c)

	token, err := ac.service.GenerateToken(userID)
	if err != nil {
		log.Printf("[AUTH] Failed to generate token for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	ac.audit(c, userID, "token_generate", true)
	c.JSON(http.StatusCreated, gin.H{
		"token":   token,
		"message": "Store this token securely - it will not be shown again",
	})
}

// RevokeToken revokes the API token for the authenticated user.
func (ac *AuthController) RevokeToken(c *gin.Context) {
	userID := GetUserID(c)

	if err := ac.service.RevokeToken(userID); err != nil {
		log.Printf("[AUTH] Failed to revoke token for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke token"})
		return
	}

	ac.audit(c, userID, "token_revoke", true)
	c.Status(http.StatusNoContent)
}

// CSRFToken hands the current CSRF token to browser clients, which send it
// back in the X-CSRF-Token header on writes.
func (ac *AuthController) CSRFToken(c *gin.Context) {
	token := GetCSRFToken(c)
	c.Header(CSRFTokenHeader, token)
	c.JSON(http.StatusOK, gin.H{"csrfToken": token})
}

func (ac *AuthController) audit(c *gin.Context, userID uint, action string, success bool) {
	if ac.auditor == nil {
		return
	}
	ac.auditor.LogAuth(userID, action, c.ClientIP(), c.Request.UserAgent(), success)
}

func isInputError(err error) bool {
	for _, target := range []error{
		ErrUsernameRequired, ErrEmailRequired, ErrPasswordRequired,
		ErrUsernameInvalid, ErrEmailInvalid, ErrPasswordTooShort, ErrPasswordTooLong,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	if fields, ok := validation.FieldErrors(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": fields})
	} else {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
	}
	return false
}
