package repositories

import (
	"fmt"
	"sync"

	"github.com/yigit/bgrs/internal/app/models"
	"github.com/yigit/bgrs/internal/pkg/auth"
)

// UserRepository is the identity store: registered credentials for both roles and the
// set of usernames that currently hold a session.
//
// Students and administrators share one credential map, so a username can never exist
// under both roles. Password hashing and verification run outside the lock; the
// insert and the session add re-check their precondition under the write lock.
type UserRepository struct {
	mu       sync.RWMutex
	users    map[string]*models.User
	sessions map[string]struct{}
	hasher   auth.PasswordHasher
}

// NewUserRepository creates an empty identity store
func NewUserRepository(hasher auth.PasswordHasher) *UserRepository {
	return &UserRepository{
		users:    make(map[string]*models.User),
		sessions: make(map[string]struct{}),
		hasher:   hasher,
	}
}

// Register stores a new user under role. An existing username, under either role, is
// left untouched and reported as StatusAlreadyRegistered.
func (r *UserRepository) Register(username, password string, role models.RoleType) (models.RegisterStatus, error) {
	if !role.Valid() {
		return models.StatusInvalidRole, nil
	}
	if r.IsRegistered(username) {
		return models.StatusAlreadyRegistered, nil
	}

	hash, err := r.hasher.Hash(password)
	if err != nil {
		return 0, fmt.Errorf("error hashing password: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[username]; exists {
		return models.StatusAlreadyRegistered, nil
	}
	r.users[username] = &models.User{
		Username:     username,
		PasswordHash: hash,
		RoleType:     role,
	}
	return models.StatusRegistered, nil
}

// IsRegistered reports whether username exists under any role
func (r *UserRepository) IsRegistered(username string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.users[username]
	return ok
}

// Get returns the user record for username
func (r *UserRepository) Get(username string) (*models.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[username]
	return u, ok
}

// RoleOf returns the role username registered with
func (r *UserRepository) RoleOf(username string) (models.RoleType, bool) {
	u, ok := r.Get(username)
	if !ok {
		return "", false
	}
	return u.RoleType, true
}

// Login opens a session for username. A user who already holds a session gets
// LoginAlreadyLoggedIn without the password being checked.
func (r *UserRepository) Login(username, password string) (models.LoginStatus, models.RoleType) {
	r.mu.RLock()
	_, loggedIn := r.sessions[username]
	user, registered := r.users[username]
	r.mu.RUnlock()

	if loggedIn {
		return models.LoginAlreadyLoggedIn, ""
	}
	if !registered {
		return models.LoginNotRegistered, ""
	}
	if !r.hasher.Verify(user.PasswordHash, password) {
		return models.LoginWrongPassword, ""
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, loggedIn := r.sessions[username]; loggedIn {
		return models.LoginAlreadyLoggedIn, ""
	}
	r.sessions[username] = struct{}{}
	return models.LoginOK, user.RoleType
}

// IsLoggedIn reports whether username holds a session
func (r *UserRepository) IsLoggedIn(username string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sessions[username]
	return ok
}

// Logout closes the session of username
func (r *UserRepository) Logout(username string) models.LogoutStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[username]; !ok {
		return models.LogoutNotLoggedIn
	}
	delete(r.sessions, username)
	return models.LogoutOK
}

// SessionCount returns the number of open sessions
func (r *UserRepository) SessionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Count returns the number of registered users
func (r *UserRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}
