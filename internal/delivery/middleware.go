package delivery

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Mohamed-Fawzy15/Procrew-E-commerce-app/internal/domain"
)

const currentUserKey = "currentUser"

// TokenResolver maps a presented bearer token to a principal.
type TokenResolver interface {
	ResolveToken(token string) (*domain.User, bool)
}

// Authenticate extracts the bearer token, resolves it, and stashes the
// principal in the request context. Requests without a valid token
// pass through anonymously; RequireAuth decides whether that matters.
func Authenticate(resolver TokenResolver, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			log.Warnf("Middleware: Invalid Authorization header format: %s", authHeader)
			c.Next()
			return
		}

		if user, ok := resolver.ResolveToken(parts[1]); ok {
			c.Set(currentUserKey, user)
		} else {
			log.Warn("Middleware: Presented token does not match the live session")
		}
		c.Next()
	}
}

// CurrentUser reads the principal set by Authenticate.
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*domain.User)
	return user, ok
}

func RequireAuth(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			log.Warnf("Middleware: Unauthenticated request to %s", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Status: "Fail", Message: "Authentication required"})
			return
		}
		c.Next()
	}
}

func RequireAdmin(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			log.Warnf("Middleware: Unauthenticated request to admin route %s", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Status: "Fail", Message: "Authentication required"})
			return
		}
		if user.Role != domain.RoleAdmin {
			log.Warnf("Middleware: User %s attempted admin route %s", user.Email, c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusForbidden, Response{Status: "Fail", Message: "Admin privileges required"})
			return
		}
		c.Next()
	}
}

// RequestLogger logs each request with latency and outcome.
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"status_code": c.Writer.Status(),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"remote_ip":   c.ClientIP(),
			"latency_ms":  time.Since(startTime).Milliseconds(),
		})
		if len(c.Errors) > 0 {
			entry.Error(c.Errors.String())
		} else {
			entry.Info("Request completed")
		}
	}
}
