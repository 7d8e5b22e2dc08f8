// Package middleware provides authentication, caching and observability
// middleware for the application.
package middleware

import (
	"net/url"
	"strconv"
	"strings"

	"yatube/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var cfg *config.Config

// AuthCookieName is the cookie carrying the JWT for browser clients.
const AuthCookieName = "auth_token"

// LoginPath is where anonymous mutation attempts are redirected; the
// originally requested path is preserved in the next parameter.
const LoginPath = "/auth/login/"

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// tokenFromRequest extracts the JWT from the Authorization header or,
// failing that, the auth cookie.
func tokenFromRequest(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	return c.Cookies(AuthCookieName)
}

// parseUserID validates the token and extracts the user ID from the "sub"
// claim (subject claim per RFC 7519).
func parseUserID(tokenString string) (uint, bool) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}
	subClaim, ok := claims["sub"]
	if !ok {
		return 0, false
	}
	subStr, ok := subClaim.(string)
	if !ok {
		return 0, false
	}
	userIDVal, err := strconv.ParseUint(subStr, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(userIDVal), true
}

// RedirectToLogin sends an anonymous client to the login page, carrying the
// originally requested path as the return target.
func RedirectToLogin(c *fiber.Ctx) error {
	next := url.QueryEscape(c.OriginalURL())
	return c.Redirect(LoginPath+"?next="+next, fiber.StatusFound)
}

// LoginRequired enforces authentication for protected routes. Anonymous or
// invalid requests are redirected to the login page rather than erroring,
// matching the behavior of the rendered application.
func LoginRequired(c *fiber.Ctx) error {
	tokenString := tokenFromRequest(c)
	if tokenString == "" {
		return RedirectToLogin(c)
	}

	userID, ok := parseUserID(tokenString)
	if !ok {
		return RedirectToLogin(c)
	}

	c.Locals("userID", userID)
	return c.Next()
}

// OptionalAuth sets the user ID in locals when valid credentials are
// present and lets the request through anonymously otherwise. Read-only
// routes use this so profiles can report the Following flag.
func OptionalAuth(c *fiber.Ctx) error {
	if tokenString := tokenFromRequest(c); tokenString != "" {
		if userID, ok := parseUserID(tokenString); ok {
			c.Locals("userID", userID)
		}
	}
	return c.Next()
}
