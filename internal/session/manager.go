package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"storefront/internal/domain"
	"storefront/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CookieName is the HttpOnly cookie carrying the signed session token.
const CookieName = "storefront_session"

// Manager binds sessions to HTTP requests through a signed cookie whose payload
// is the session id plus the principal descriptor. The Redis record stays
// authoritative: a valid cookie for a destroyed session is unauthenticated.
type Manager struct {
	Store  *Store
	Secret string
	TTL    time.Duration
	Secure bool
	Domain string
	Logger *logrus.Logger
}

// NewManager returns a Manager for the given store and cookie settings.
func NewManager(store *Store, secret string, ttl time.Duration, secure bool, domain string, logger *logrus.Logger) *Manager {
	return &Manager{Store: store, Secret: secret, TTL: ttl, Secure: secure, Domain: domain, Logger: logger}
}

// Start creates a session for p and sets the session cookie. A session already
// attached to the request is destroyed first.
func (m *Manager) Start(c *gin.Context, p domain.Principal) (Session, error) {
	ctx := c.Request.Context()
	if claims, ok := m.claims(c); ok {
		if err := m.Store.Destroy(ctx, claims.SessionID); err != nil {
			m.Logger.WithError(err).Warn("failed to destroy previous session")
		}
	}
	sid, err := m.Store.Create(ctx, p)
	if err != nil {
		return Session{}, err
	}
	token, err := utils.GenerateSessionToken(sid, p, m.Secret, m.TTL)
	if err != nil {
		_ = m.Store.Destroy(ctx, sid)
		return Session{}, err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, int(m.TTL.Seconds()), "/", m.Domain, m.Secure, true)
	return Session{ID: sid, Principal: p}, nil
}

// Current returns the session attached to the request. It never fails: any
// missing, invalid, expired or destroyed session reads as unauthenticated.
func (m *Manager) Current(c *gin.Context) (Session, bool) {
	claims, ok := m.claims(c)
	if !ok {
		return Session{}, false
	}
	return m.lookup(c.Request.Context(), claims.SessionID)
}

func (m *Manager) lookup(ctx context.Context, sid string) (Session, bool) {
	p, err := m.Store.Load(ctx, sid)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			m.Logger.WithError(err).WithField("session_id", sid).Warn("session lookup failed")
		}
		return Session{}, false
	}
	return Session{ID: sid, Principal: p}, true
}

// End destroys the request's session and clears the cookie. Ending an absent
// session succeeds.
func (m *Manager) End(c *gin.Context) error {
	if claims, ok := m.claims(c); ok {
		if err := m.Store.Destroy(c.Request.Context(), claims.SessionID); err != nil {
			return err
		}
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", m.Domain, m.Secure, true)
	return nil
}

func (m *Manager) claims(c *gin.Context) (*utils.SessionClaims, bool) {
	raw, err := c.Cookie(CookieName)
	if err != nil || raw == "" {
		return nil, false
	}
	claims, err := utils.ParseSessionToken(raw, m.Secret)
	if err != nil {
		return nil, false
	}
	return claims, true
}
