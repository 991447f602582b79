// Package session issues signed session cookies and resolves them into the
// logged-in user for each request.
package session

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bookclub/catalog/config"
	"github.com/bookclub/catalog/types"
)

const (
	CookieName      = "catalog_session"
	FlashCookieName = "catalog_flash"

	defaultTTL = 24 * time.Hour
)

// UserLoader resolves the subject of a session token.
type UserLoader interface {
	GetByID(ctx context.Context, id int) (types.User, error)
}

// Manager issues, validates and revokes session cookies.
type Manager struct {
	secret  []byte
	ttl     time.Duration
	secure  bool
	revoker Revoker
	users   UserLoader
}

func NewManager(cfg config.SessionConfig, revoker Revoker, users UserLoader) *Manager {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Manager{
		secret:  []byte(cfg.Secret),
		ttl:     ttl,
		secure:  cfg.CookieSecure,
		revoker: revoker,
		users:   users,
	}
}

// Issue starts a session for the user by setting the session cookie.
func (m *Manager) Issue(w http.ResponseWriter, userID int) error {
	token, err := m.issueToken(userID, uuid.NewString())
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Revoke ends the session carried by the request, if any, and clears the
// cookie.
func (m *Manager) Revoke(w http.ResponseWriter, r *http.Request) error {
	defer m.clear(w)

	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil
	}
	claims, err := m.parseToken(cookie.Value)
	if err != nil {
		return nil
	}
	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining <= 0 {
		return nil
	}
	return m.revoker.Revoke(r.Context(), claims.ID, remaining)
}

// Middleware loads the logged-in user into the request context. Requests
// with a missing, invalid or revoked cookie continue anonymously.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(CookieName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		user, err := m.resolve(r.Context(), cookie.Value)
		if err != nil {
			zerolog.Ctx(r.Context()).Debug().Err(err).Msg("ignoring session cookie")
			m.clear(w)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), &user)))
	})
}

func (m *Manager) resolve(ctx context.Context, token string) (types.User, error) {
	claims, err := m.parseToken(token)
	if err != nil {
		return types.User{}, err
	}
	revoked, err := m.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return types.User{}, err
	}
	if revoked {
		return types.User{}, errors.New("session revoked")
	}
	userID, err := strconv.Atoi(claims.Subject)
	if err != nil || userID < 1 {
		return types.User{}, errors.New("invalid subject")
	}
	user, err := m.users.GetByID(ctx, userID)
	if err != nil {
		return types.User{}, err
	}
	if !user.IsActive {
		return types.User{}, errors.New("inactive user")
	}
	return user, nil
}

func (m *Manager) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) issueToken(userID int, id string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        id,
		Subject:   strconv.Itoa(userID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *Manager) parseToken(tokenString string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return m.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if strings.TrimSpace(claims.Subject) == "" || claims.ID == "" {
		return nil, errors.New("missing claims")
	}
	return claims, nil
}

type contextKey string

const userContextKey contextKey = "user"

// WithUser returns a context carrying the logged-in user.
func WithUser(ctx context.Context, user *types.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFrom returns the logged-in user, or nil for anonymous requests.
func UserFrom(ctx context.Context) *types.User {
	user, _ := ctx.Value(userContextKey).(*types.User)
	return user
}

// SetFlash stores a one-time notice shown on the next page.
func SetFlash(w http.ResponseWriter, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString([]byte(message)),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlash returns the pending notice, if any, and clears it.
func PopFlash(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(FlashCookieName)
	if err != nil {
		return ""
	}
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	message, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return ""
	}
	return string(message)
}
