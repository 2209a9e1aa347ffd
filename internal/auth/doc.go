// Package auth provides authentication for the JSON API.
//
// It supports two authentication modes:
//   - "none": No authentication required (default), all requests use user ID 0
//   - "local": Local user database with session cookies for browser clients
//     and Bearer tokens for API clients
//
// # Configuration
//
//	AUTH_MODE=none   # Default, no auth required
//	AUTH_MODE=local  # Requires registration and login
//
// For local mode, additional configuration:
//
//	AUTH_SESSION_SECRET=<hex-32-bytes>     # Signs CSRF tokens, generated if empty
//	AUTH_SESSION_LIFETIME=24h              # Session duration
//	AUTH_TOKEN_EXPIRY=720h                 # API token expiry (30 days default)
//	AUTH_BCRYPT_COST=12                    # bcrypt cost factor
//	AUTH_SECURE_COOKIES=true               # HTTPS-only cookies
//	AUTH_MAX_LOGIN_ATTEMPTS=5              # Failures before lockout
//
// # Usage
//
//	authService := auth.NewService(users.NewRepository(db), cfg.Auth)
//	sessions, _ := auth.NewSessionManager(sqlDB, cfg.Database.Driver, cfg.Auth)
//	router.Use(sessions.SessionLoadSave())
//	router.Use(auth.NewMiddleware(authService, sessions, cfg.Auth).Handler())
//
// Extract the requester in handlers:
//
//	userID := auth.GetUserID(c)  // DefaultUserID in "none" mode
package auth
