package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/Mohamed-Fawzy15/Procrew-E-commerce-app/internal/domain"
	"github.com/Mohamed-Fawzy15/Procrew-E-commerce-app/internal/storage"
)

// Identity owns the account registry and the current session.
// Credentials are bcrypt-hashed at signup and verified by hash
// comparison at login.
type Identity struct {
	mu         sync.Mutex
	backend    storage.Backend
	log        *logrus.Logger
	adminEmail string
	accounts   []domain.Account
	session    domain.Session
	lastErr    error
}

func NewIdentity(ctx context.Context, backend storage.Backend, adminEmail string, logger *logrus.Logger) (*Identity, error) {
	id := &Identity{
		backend:    backend,
		log:        logger,
		adminEmail: strings.ToLower(adminEmail),
	}

	usersDoc, err := backend.Load(ctx, storage.CollectionUsers)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBackend, err)
	}
	if usersDoc != nil {
		if err := json.Unmarshal(usersDoc, &id.accounts); err != nil {
			return nil, fmt.Errorf("%w: corrupt users collection: %v", domain.ErrBackend, err)
		}
	}

	sessionDoc, err := backend.Load(ctx, storage.CollectionSession)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBackend, err)
	}
	if sessionDoc != nil {
		if err := json.Unmarshal(sessionDoc, &id.session); err != nil {
			return nil, fmt.Errorf("%w: corrupt session collection: %v", domain.ErrBackend, err)
		}
	}

	logger.Infof("Identity: Loaded %d accounts (session restored: %t)", len(id.accounts), id.session.Authenticated())
	return id, nil
}

func (id *Identity) LastError() error {
	id.mu.Lock()
	defer id.mu.Unlock()
	return id.lastErr
}

// Current implements domain.IdentityProvider.
func (id *Identity) Current() (*domain.User, bool) {
	id.mu.Lock()
	defer id.mu.Unlock()

	if !id.session.Authenticated() {
		return nil, false
	}
	u := *id.session.User
	return &u, true
}

// Token returns the live session token, or empty when anonymous.
func (id *Identity) Token() string {
	id.mu.Lock()
	defer id.mu.Unlock()
	return id.session.Token
}

// ResolveToken returns the session user when the presented token
// matches the live session.
func (id *Identity) ResolveToken(token string) (*domain.User, bool) {
	id.mu.Lock()
	defer id.mu.Unlock()

	if token == "" || !id.session.Authenticated() || id.session.Token != token {
		return nil, false
	}
	u := *id.session.User
	return &u, true
}

// Login verifies the claimed identity and replaces the current
// session. A login while already authenticated swaps sessions rather
// than layering.
func (id *Identity) Login(ctx context.Context, email, password string) (domain.User, error) {
	id.mu.Lock()
	defer id.mu.Unlock()
	id.lastErr = nil

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		id.log.Warn("Identity: Login attempted with empty email or password")
		return domain.User{}, id.fail(fmt.Errorf("%w: email and password", domain.ErrMissingField))
	}

	account, ok := id.findAccount(email)
	if !ok {
		id.log.Warnf("Identity: Login failed, no account for %s", email)
		return domain.User{}, id.fail(domain.ErrAccountNotFound)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		id.log.Warnf("Identity: Login failed, wrong password for %s", email)
		return domain.User{}, id.fail(domain.ErrInvalidCredentials)
	}

	profile := account.Profile()
	session := domain.Session{User: &profile, Token: uuid.NewString()}
	if err := id.persistSession(ctx, session); err != nil {
		return domain.User{}, id.fail(err)
	}
	id.session = session

	id.log.Infof("Identity: %s logged in (role: %s)", profile.Email, profile.Role)
	return profile, nil
}

// Signup registers a new account, derives its role (the reserved admin
// email gets admin, everyone else user) and establishes a session the
// same way Login does.
func (id *Identity) Signup(ctx context.Context, name, email, password, confirmPassword, phone string) (domain.User, error) {
	id.mu.Lock()
	defer id.mu.Unlock()
	id.lastErr = nil

	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" || confirmPassword == "" || phone == "" {
		id.log.Warn("Identity: Signup attempted with missing fields")
		return domain.User{}, id.fail(domain.ErrMissingField)
	}
	if password != confirmPassword {
		id.log.Warnf("Identity: Signup failed for %s, password confirmation mismatch", email)
		return domain.User{}, id.fail(domain.ErrPasswordMismatch)
	}
	if _, exists := id.findAccount(email); exists {
		id.log.Warnf("Identity: Signup failed, %s already registered", email)
		return domain.User{}, id.fail(domain.ErrDuplicateAccount)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		id.log.Errorf("Identity: Failed to hash password for %s: %v", email, err)
		return domain.User{}, id.fail(fmt.Errorf("could not process password: %w", err))
	}

	role := domain.RoleUser
	if email == id.adminEmail {
		role = domain.RoleAdmin
	}
	account := domain.Account{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Phone:        phone,
		Role:         role,
	}

	nextAccounts := append(append([]domain.Account{}, id.accounts...), account)
	if err := id.persistAccounts(ctx, nextAccounts); err != nil {
		return domain.User{}, id.fail(err)
	}

	profile := account.Profile()
	session := domain.Session{User: &profile, Token: uuid.NewString()}
	if err := id.persistSession(ctx, session); err != nil {
		// The account went out but the session did not. Restore the
		// previous registry so a retry signs up cleanly.
		id.log.Errorf("Identity: Session write failed after registering %s, rolling back registry: %v", email, err)
		if rbErr := id.persistAccounts(ctx, id.accounts); rbErr != nil {
			id.log.Errorf("Identity: CRITICAL! Failed to roll back account registry for %s: %v. Manual intervention required!", email, rbErr)
		}
		return domain.User{}, id.fail(err)
	}
	id.accounts = nextAccounts
	id.session = session

	id.log.Infof("Identity: %s registered (role: %s)", profile.Email, role)
	return profile, nil
}

// Logout clears the current session. Calling it while anonymous is a
// no-op.
func (id *Identity) Logout(ctx context.Context) error {
	id.mu.Lock()
	defer id.mu.Unlock()
	id.lastErr = nil

	if err := id.backend.Delete(ctx, storage.CollectionSession); err != nil {
		id.log.Errorf("Identity: Failed to clear persisted session: %v", err)
		return id.fail(fmt.Errorf("%w: %v", domain.ErrBackend, err))
	}
	id.session = domain.Session{}

	id.log.Info("Identity: Session cleared")
	return nil
}

func (id *Identity) findAccount(email string) (domain.Account, bool) {
	for _, a := range id.accounts {
		if strings.EqualFold(a.Email, email) {
			return a, true
		}
	}
	return domain.Account{}, false
}

func (id *Identity) persistAccounts(ctx context.Context, accounts []domain.Account) error {
	doc, err := json.Marshal(accounts)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBackend, err)
	}
	if err := id.backend.Save(ctx, storage.CollectionUsers, doc); err != nil {
		id.log.Errorf("Identity: Failed to persist accounts: %v", err)
		return fmt.Errorf("%w: %v", domain.ErrBackend, err)
	}
	return nil
}

func (id *Identity) persistSession(ctx context.Context, session domain.Session) error {
	doc, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBackend, err)
	}
	if err := id.backend.Save(ctx, storage.CollectionSession, doc); err != nil {
		id.log.Errorf("Identity: Failed to persist session: %v", err)
		return fmt.Errorf("%w: %v", domain.ErrBackend, err)
	}
	return nil
}

func (id *Identity) fail(err error) error {
	id.lastErr = err
	return err
}
