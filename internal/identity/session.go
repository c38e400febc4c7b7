package identity

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"wompi-harness/internal/apperr"
	"wompi-harness/internal/client"
)

// Session is an authenticated identity.
type Session struct {
	UserID    string
	Email     string
	IDToken   string
	ExpiresAt time.Time
}

// Manager holds the current session and pushes auth-state changes to
// subscribers, the way the provider SDK's continuous subscription does.
// Loading starts true and flips false exactly once, on the first
// notification.
type Manager struct {
	idClient client.IdentityClient

	mu       sync.Mutex
	session  *Session
	loading  bool
	notified bool
	subs     map[int]func(*Session)
	nextSub  int
}

func NewManager(idClient client.IdentityClient) *Manager {
	return &Manager{
		idClient: idClient,
		loading:  true,
		subs:     make(map[int]func(*Session)),
	}
}

// Start performs the initial auth-state determination. The harness never
// persists sessions across runs, so the first state is always signed out.
func (m *Manager) Start() {
	m.setSession(nil)
}

// Subscribe registers an auth-state callback and returns its cancellation
// handle. The callback fires on every state change until canceled.
func (m *Manager) Subscribe(fn func(*Session)) (cancel func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

func (m *Manager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

func (m *Manager) SignUp(ctx context.Context, email, password string) (*Session, error) {
	result, err := m.idClient.SignUp(ctx, email, password)
	if err != nil {
		apperr.LogError(err, "signUp")
		return nil, err
	}

	sess := sessionFromResult(result)
	m.setSession(sess)
	return sess, nil
}

func (m *Manager) SignIn(ctx context.Context, email, password string) (*Session, error) {
	result, err := m.idClient.SignIn(ctx, email, password)
	if err != nil {
		apperr.LogError(err, "signIn")
		return nil, err
	}

	sess := sessionFromResult(result)
	m.setSession(sess)
	return sess, nil
}

func (m *Manager) SignOut(ctx context.Context) error {
	m.setSession(nil)
	return nil
}

// Token implements client.TokenSource for the gateway.
func (m *Manager) Token(ctx context.Context) (string, error) {
	m.mu.Lock()
	sess := m.session
	m.mu.Unlock()

	if sess == nil {
		return "", errors.New("no active session")
	}
	if !sess.ExpiresAt.IsZero() && time.Now().After(sess.ExpiresAt) {
		return "", errors.New("session token expired")
	}
	return sess.IDToken, nil
}

func (m *Manager) setSession(sess *Session) {
	m.mu.Lock()
	m.session = sess
	if !m.notified {
		m.notified = true
		m.loading = false
	}
	subs := make([]func(*Session), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	for _, fn := range subs {
		fn(sess)
	}
}

func sessionFromResult(result *client.AuthResult) *Session {
	sess := &Session{
		UserID:    result.UserID,
		Email:     result.Email,
		IDToken:   result.IDToken,
		ExpiresAt: time.Now().Add(result.ExpiresIn),
	}

	// The access token is a JWT; its claims are authoritative for identity
	// fields when the envelope omits them.
	if claims := tokenClaims(result.IDToken); claims != nil {
		if sess.UserID == "" {
			if sub, err := claims.GetSubject(); err == nil {
				sess.UserID = sub
			}
		}
		if sess.Email == "" {
			if email, ok := (*claims)["email"].(string); ok {
				sess.Email = email
			}
		}
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			sess.ExpiresAt = exp.Time
		}
	}

	return sess
}

func tokenClaims(token string) *jwt.MapClaims {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	// The backend verifies signatures; the harness only reads claims.
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil
	}
	return &claims
}
