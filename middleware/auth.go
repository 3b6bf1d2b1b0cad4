package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"chorus/social-service/models"
	"chorus/social-service/services"
	"chorus/social-service/utils"
)

var (
	// ErrUnauthorized means the request carried no credential at all.
	ErrUnauthorized = errors.New("missing credential")
	// ErrUnknownUser means the token is valid but its user no longer exists.
	ErrUnknownUser = errors.New("unknown user")
)

const sessionKey = "session"

// TokenVerifier resolves a token to the user id it was issued for.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// UserLookup loads a user without credentials. It returns
// services.ErrNotFound when the user does not exist.
type UserLookup interface {
	Lookup(ctx context.Context, userID string) (*models.User, error)
}

// SessionGuard authenticates requests from the identity token cookie.
type SessionGuard struct {
	tokens     TokenVerifier
	users      UserLookup
	cookieName string
	logger     *utils.Logger
}

func NewSessionGuard(tokens TokenVerifier, users UserLookup, cookieName string, logger *utils.Logger) *SessionGuard {
	return &SessionGuard{
		tokens:     tokens,
		users:      users,
		cookieName: cookieName,
		logger:     logger.With("component", "SessionGuard"),
	}
}

// VerifyRequest checks the request token and returns its user id without
// loading the user.
func (g *SessionGuard) VerifyRequest(r *http.Request) (string, error) {
	return g.verify(ExtractToken(r, g.cookieName))
}

// VerifyHandshake is VerifyRequest for websocket upgrades, which may also
// carry the token in the token query parameter.
func (g *SessionGuard) VerifyHandshake(r *http.Request) (string, error) {
	tokenString := ExtractToken(r, g.cookieName)
	if tokenString == "" {
		tokenString = r.URL.Query().Get("token")
	}
	return g.verify(tokenString)
}

func (g *SessionGuard) verify(tokenString string) (string, error) {
	if tokenString == "" {
		return "", utils.Unauthenticated("unauthorized", ErrUnauthorized)
	}

	userID, err := g.tokens.Verify(tokenString)
	if err != nil {
		return "", utils.Unauthenticated("invalid token", err)
	}
	return userID, nil
}

// Authenticate resolves the request's token to a session.
func (g *SessionGuard) Authenticate(r *http.Request) (*models.SessionContext, error) {
	userID, err := g.VerifyRequest(r)
	if err != nil {
		return nil, err
	}

	user, err := g.users.Lookup(r.Context(), userID)
	if errors.Is(err, services.ErrNotFound) {
		return nil, utils.Unauthenticated("user not found", ErrUnknownUser)
	}
	if err != nil {
		return nil, utils.Unexpected("failed to load user", err)
	}

	user.Password = ""
	return &models.SessionContext{User: *user}, nil
}

// Handler aborts the chain on any authentication failure; protected handlers
// only run with a resolved session.
func (g *SessionGuard) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := g.Authenticate(c.Request)
		if err != nil {
			appErr := utils.AsAppError(err)
			if appErr.Kind == utils.KindUnexpected {
				g.logger.Error("Authentication failed", "error", err)
			}
			c.AbortWithStatusJSON(appErr.Status(), gin.H{"error": appErr.Message})
			return
		}

		c.Set(sessionKey, session)
		c.Next()
	}
}

// CurrentSession returns the session attached by the guard.
func CurrentSession(c *gin.Context) (*models.SessionContext, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	session, ok := v.(*models.SessionContext)
	return session, ok
}

// CurrentUser returns the authenticated user attached by the guard.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	session, ok := CurrentSession(c)
	if !ok {
		return nil, false
	}
	return &session.User, true
}

// ExtractToken reads the token from the named cookie, then the Authorization
// header.
func ExtractToken(r *http.Request, cookieName string) string {
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	bearerToken := r.Header.Get("Authorization")
	if strings.HasPrefix(bearerToken, "Bearer ") {
		return strings.TrimPrefix(bearerToken, "Bearer ")
	}
	return ""
}
