// Package session owns the current signed-in user for the process.
//
// A Manager is built once and passed to whatever needs it. It persists the user and a
// token under two keys in a kvstore.Store, and restores them on startup. Sign-in is
// mock: any well-formed credential pair is accepted.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"adminboard/internal/kvstore"

	"github.com/google/uuid"
)

const defaultAvatarBaseURL = "https://ui-avatars.com/api/"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// EventRecorder receives successful sign-in, registration and sign-out events.
type EventRecorder interface {
	RecordAuthEvent(ctx context.Context, action, user, description string) error
}

type Option func(*Manager)

func WithTokens(t TokenIssuer) Option { return func(m *Manager) { m.tokens = t } }

func WithEvents(r EventRecorder) Option { return func(m *Manager) { m.events = r } }

func WithClock(clock func() time.Time) Option { return func(m *Manager) { m.clock = clock } }

func WithLogger(l *slog.Logger) Option { return func(m *Manager) { m.log = l } }

func WithAvatarBaseURL(base string) Option { return func(m *Manager) { m.avatarBase = base } }

// Manager is the single source of truth for who is signed in.
//
// Mutations are serialized through op. Login and Register refuse to wait for it and
// return ErrBusy instead; Restore, Logout and UpdateUser queue behind it.
type Manager struct {
	store      kvstore.Store
	tokens     TokenIssuer
	events     EventRecorder
	clock      func() time.Time
	log        *slog.Logger
	avatarBase string

	op sync.Mutex

	mu        sync.RWMutex
	user      *User
	loading   bool
	listeners map[int]func(State)
	nextSub   int
}

// NewManager returns a manager in the loading state. Call Restore once at startup.
func NewManager(store kvstore.Store, opts ...Option) *Manager {
	m := &Manager{
		store:      store,
		tokens:     OpaqueTokens{},
		clock:      time.Now,
		log:        slog.Default(),
		avatarBase: defaultAvatarBaseURL,
		loading:    true,
		listeners:  make(map[int]func(State)),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Current returns a snapshot. The returned user is a copy.
func (m *Manager) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	switch {
	case m.loading:
		return StatusLoading
	case m.user != nil:
		return StatusAuthenticated
	default:
		return StatusUnauthenticated
	}
}

// Subscribe registers fn to run after every state change. fn must not call back into
// mutating Manager methods.
func (m *Manager) Subscribe(fn func(State)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.listeners[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.listeners, id)
			m.mu.Unlock()
		})
	}
}

// Restore loads the persisted session. If either key is missing, the user blob does
// not decode into a valid user, or the token is rejected, both keys are removed and
// the session ends up signed out. Restore never reports an error.
func (m *Manager) Restore(ctx context.Context) {
	m.op.Lock()
	defer m.op.Unlock()

	m.setLoading(true)

	u, err := m.readPersisted(ctx)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			m.log.Warn("discarding persisted session", "err", err)
		}
		m.clearPersisted(ctx)
		m.finish(nil)
		return
	}
	m.finish(u)
}

// Login signs in with any non-empty email and password.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	if !m.op.TryLock() {
		return ErrBusy
	}
	defer m.op.Unlock()

	m.setLoading(true)
	var established *User
	defer func() { m.finishKeeping(established) }()

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		field := "email"
		if email != "" {
			field = "password"
		}
		return &ValidationError{Field: field, Message: msgCredentialsRequired}
	}

	now := m.clock().UTC()
	u, err := m.newUser(normalizeEmail(email), displayNameFromEmail(email), now)
	if err == nil {
		err = m.persist(ctx, u)
	}
	if err != nil {
		m.abandon(ctx)
		return &AuthError{Message: msgLoginFailed, Err: err}
	}

	established = u
	m.record(ctx, "User Login", u.Email, "User signed in")
	return nil
}

// Register signs in a new user with the supplied display name.
func (m *Manager) Register(ctx context.Context, email, password, name string) error {
	if !m.op.TryLock() {
		return ErrBusy
	}
	defer m.op.Unlock()

	m.setLoading(true)
	var established *User
	defer func() { m.finishKeeping(established) }()

	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	switch {
	case email == "":
		return &ValidationError{Field: "email", Message: msgAllFieldsRequired}
	case password == "":
		return &ValidationError{Field: "password", Message: msgAllFieldsRequired}
	case name == "":
		return &ValidationError{Field: "name", Message: msgAllFieldsRequired}
	case utf8.RuneCountInString(name) < 2:
		return &ValidationError{Field: "name", Message: msgNameTooShort}
	case !emailPattern.MatchString(email):
		return &ValidationError{Field: "email", Message: msgInvalidEmail}
	}

	now := m.clock().UTC()
	u, err := m.newUser(normalizeEmail(email), name, now)
	if err == nil {
		err = m.persist(ctx, u)
	}
	if err != nil {
		m.abandon(ctx)
		return &AuthError{Message: msgRegistrationFailed, Err: err}
	}

	established = u
	m.record(ctx, "User Registered", u.Email, "New account created")
	return nil
}

// Logout always signs out locally. Storage and event failures are logged only.
func (m *Manager) Logout(ctx context.Context) {
	m.op.Lock()
	defer m.op.Unlock()

	m.mu.RLock()
	var email string
	if m.user != nil {
		email = m.user.Email
	}
	m.mu.RUnlock()

	m.clearPersisted(ctx)
	if email != "" {
		m.record(ctx, "User Logout", email, "User signed out")
	}
	m.setUser(nil)
}

// UpdateUser merges patch into the current user and persists the result. It does
// nothing when signed out. Values that Restore would reject are skipped (see UserPatch),
// so whatever is written here survives a restart.
func (m *Manager) UpdateUser(ctx context.Context, patch UserPatch) {
	m.op.Lock()
	defer m.op.Unlock()

	m.mu.RLock()
	if m.user == nil {
		m.mu.RUnlock()
		return
	}
	merged := m.user.clone()
	m.mu.RUnlock()

	patch.applyTo(merged)

	if raw, err := json.Marshal(merged); err != nil {
		m.log.Warn("encode updated user failed", "err", err)
	} else if err := m.store.Set(ctx, KeyUser, string(raw)); err != nil {
		m.log.Warn("persist updated user failed", "user_id", merged.ID, "err", err)
	}
	m.setUser(merged)
}

func (m *Manager) newUser(email, name string, now time.Time) (*User, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	last := now
	return &User{
		ID:          id.String(),
		Email:       email,
		Name:        name,
		Role:        RoleAdmin,
		AvatarURL:   avatarURL(m.avatarBase, name),
		CreatedAt:   now,
		LastLoginAt: &last,
	}, nil
}

// persist writes the token and then the user. A partial write is undone by the caller.
func (m *Manager) persist(ctx context.Context, u *User) error {
	tok, err := m.tokens.Issue(u.CreatedAt, u.ID, string(u.Role))
	if err != nil {
		return err
	}
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	if err := m.store.Set(ctx, KeyToken, tok); err != nil {
		return err
	}
	return m.store.Set(ctx, KeyUser, string(raw))
}

func (m *Manager) readPersisted(ctx context.Context) (*User, error) {
	raw, err := m.store.Get(ctx, KeyUser)
	if err != nil {
		return nil, err
	}
	tok, err := m.store.Get(ctx, KeyToken)
	if err != nil {
		return nil, err
	}

	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, err
	}
	if err := u.validate(); err != nil {
		return nil, err
	}

	sub, err := m.tokens.Subject(tok, m.clock())
	if err != nil {
		return nil, err
	}
	if sub != "" && sub != u.ID {
		return nil, ErrInvalidToken
	}
	return &u, nil
}

// abandon drops a sign-in that failed midway so storage and memory agree on signed out.
func (m *Manager) abandon(ctx context.Context) {
	m.clearPersisted(ctx)
	m.mu.Lock()
	m.user = nil
	m.mu.Unlock()
}

func (m *Manager) clearPersisted(ctx context.Context) {
	if err := m.store.Delete(ctx, KeyUser, KeyToken); err != nil {
		m.log.Warn("clear persisted session failed", "err", err)
	}
}

func (m *Manager) record(ctx context.Context, action, user, desc string) {
	if m.events == nil {
		return
	}
	if err := m.events.RecordAuthEvent(ctx, action, user, desc); err != nil {
		m.log.Warn("record auth event failed", "action", action, "err", err)
	}
}

func (m *Manager) setLoading(v bool) {
	m.mu.Lock()
	changed := m.loading != v
	m.loading = v
	st := m.snapshotLocked()
	fns := m.listenersLocked()
	m.mu.Unlock()
	if changed {
		notify(fns, st)
	}
}

func (m *Manager) setUser(u *User) {
	m.mu.Lock()
	m.user = u
	st := m.snapshotLocked()
	fns := m.listenersLocked()
	m.mu.Unlock()
	notify(fns, st)
}

// finish sets the user and clears loading in one step.
func (m *Manager) finish(u *User) {
	m.mu.Lock()
	m.user = u
	m.loading = false
	st := m.snapshotLocked()
	fns := m.listenersLocked()
	m.mu.Unlock()
	notify(fns, st)
}

// finishKeeping clears loading and installs u when non-nil, leaving the current user
// alone otherwise.
func (m *Manager) finishKeeping(u *User) {
	m.mu.Lock()
	if u != nil {
		m.user = u
	}
	m.loading = false
	st := m.snapshotLocked()
	fns := m.listenersLocked()
	m.mu.Unlock()
	notify(fns, st)
}

func (m *Manager) snapshotLocked() State {
	st := State{IsLoading: m.loading}
	if m.user != nil {
		st.User = m.user.clone()
		st.IsAuthenticated = true
	}
	return st
}

func (m *Manager) listenersLocked() []func(State) {
	fns := make([]func(State), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	return fns
}

func notify(fns []func(State), st State) {
	for _, fn := range fns {
		fn(st)
	}
}

// displayNameFromEmail capitalizes the local part: "jane.doe@x.io" -> "Jane.doe".
func displayNameFromEmail(email string) string {
	local := normalizeEmail(email)
	if i := strings.IndexByte(local, '@'); i >= 0 {
		local = local[:i]
	}
	if local == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(local)
	return string(unicode.ToUpper(r)) + local[size:]
}

func avatarURL(base, name string) string {
	if base == "" {
		return ""
	}
	u, err := url.Parse(base)
	if err != nil {
		return ""
	}
	q := u.Query()
	q.Set("name", name)
	q.Set("background", "random")
	u.RawQuery = q.Encode()
	return u.String()
}
