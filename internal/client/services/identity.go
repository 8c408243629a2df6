package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/storefront/internal/client/models"
	"github.com/dmitrijs2005/storefront/internal/client/observable"
	"github.com/dmitrijs2005/storefront/internal/client/repositories/kvstore"
	"github.com/dmitrijs2005/storefront/internal/client/simulate"
	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/logging"
)

// IdentityContext owns the current identity and its persisted session.
//
// Session changes are serialized; each one persists (or deletes) the
// token/identity pair atomically before the new identity is published.
// A session change returns only after every subscriber of Changes has been
// called with the new identity, either on the calling goroutine or by a
// delivery already in progress elsewhere. Subscribers must not start session
// changes themselves.
type IdentityContext struct {
	dir    *Directory
	tokens *TokenIssuer
	repo   kvstore.Repository
	sim    *simulate.Simulator
	log    logging.Logger

	mu sync.Mutex // serializes session changes

	tokMu sync.RWMutex
	token string

	current *observable.Cell[*models.Identity]
}

func NewIdentityContext(dir *Directory, tokens *TokenIssuer, repo kvstore.Repository, sim *simulate.Simulator, log logging.Logger) *IdentityContext {
	if log == nil {
		log = logging.Nop()
	}
	return &IdentityContext{
		dir:     dir,
		tokens:  tokens,
		repo:    repo,
		sim:     sim,
		log:     log.With("component", "identity"),
		current: observable.NewCell[*models.Identity](nil),
	}
}

// Restore loads the persisted session. A missing half, undecodable identity,
// invalid or expired token, or a token issued for another user discards both
// records; Restore never fails.
func (ic *IdentityContext) Restore(ctx context.Context) {
	ic.mu.Lock()
	defer ic.mu.Unlock()

	id, token, err := ic.loadSession(ctx)
	if err != nil {
		ic.log.Warn(ctx, "discarding persisted session", "error", err)
		if derr := ic.repo.DeleteMany(ctx, common.SessionTokenKey, common.SessionIdentityKey); derr != nil {
			ic.log.Error(ctx, "failed to delete persisted session", "error", derr)
		}
		ic.publish(nil, "")
		return
	}
	if id == nil {
		ic.publish(nil, "")
		return
	}

	ic.log.Info(ctx, "session restored", "user_id", id.ID)
	ic.publish(id, token)
}

// loadSession returns (nil, "", nil) when no session is stored.
func (ic *IdentityContext) loadSession(ctx context.Context) (*models.Identity, string, error) {
	rawToken, err := ic.repo.Get(ctx, common.SessionTokenKey)
	if err != nil {
		return nil, "", err
	}
	rawID, err := ic.repo.Get(ctx, common.SessionIdentityKey)
	if err != nil {
		return nil, "", err
	}

	switch {
	case rawToken == nil && rawID == nil:
		return nil, "", nil
	case rawToken == nil || rawID == nil:
		return nil, "", fmt.Errorf("incomplete session: %w", common.ErrCorruptPersistedState)
	}

	var id models.Identity
	if err := json.Unmarshal(rawID, &id); err != nil {
		return nil, "", fmt.Errorf("decode identity: %v: %w", err, common.ErrCorruptPersistedState)
	}
	if id.ID <= 0 || id.Email == "" {
		return nil, "", fmt.Errorf("incomplete identity: %w", common.ErrCorruptPersistedState)
	}

	claims, err := ic.tokens.Parse(string(rawToken))
	if err != nil {
		return nil, "", err
	}
	if claims.UserID != id.ID {
		return nil, "", fmt.Errorf("token issued for user %d, identity is %d: %w", claims.UserID, id.ID, common.ErrInvalidToken)
	}
	return &id, string(rawToken), nil
}

// Authenticate signs in with credentials. It fails with common.ErrNotFound
// for an unknown email and common.ErrInvalidCredentials for a wrong password;
// on failure nothing is persisted and the current identity is unchanged.
func (ic *IdentityContext) Authenticate(ctx context.Context, creds models.Credentials) (models.AuthResult, error) {
	return simulate.Do(ctx, ic.sim, "auth.login", ic.sim.Latency().Auth, func() (models.AuthResult, error) {
		id, err := ic.dir.FindByEmail(creds.Email)
		if err != nil {
			return models.AuthResult{}, err
		}
		if creds.Password != common.TestPassword {
			return models.AuthResult{}, common.ErrInvalidCredentials
		}
		return ic.startSession(context.WithoutCancel(ctx), id)
	})
}

// Register creates a standard user and signs it in. When the session cannot
// be started the account is removed again.
func (ic *IdentityContext) Register(ctx context.Context, p models.Profile) (models.AuthResult, error) {
	return simulate.Do(ctx, ic.sim, "auth.register", ic.sim.Latency().Auth, func() (models.AuthResult, error) {
		id, err := ic.dir.Create(p)
		if err != nil {
			return models.AuthResult{}, err
		}
		res, err := ic.startSession(context.WithoutCancel(ctx), id)
		if err != nil {
			ic.dir.Remove(id.ID)
			return models.AuthResult{}, err
		}
		return res, nil
	})
}

func (ic *IdentityContext) startSession(ctx context.Context, id models.Identity) (models.AuthResult, error) {
	token, err := ic.tokens.Issue(id)
	if err != nil {
		return models.AuthResult{}, err
	}
	rawID, err := json.Marshal(id)
	if err != nil {
		return models.AuthResult{}, fmt.Errorf("encode identity: %w", err)
	}

	ic.mu.Lock()
	defer ic.mu.Unlock()

	if err := ic.repo.SetMany(ctx, map[string][]byte{
		common.SessionTokenKey:    []byte(token),
		common.SessionIdentityKey: rawID,
	}); err != nil {
		return models.AuthResult{}, fmt.Errorf("persist session: %w", err)
	}

	ic.log.Info(ctx, "signed in", "user_id", id.ID, "role", id.Role)
	ic.publish(&id, token)
	return models.AuthResult{Identity: id, Token: token}, nil
}

// SignOut drops the session and publishes no identity. The in-memory state is
// cleared even when deleting the persisted records fails; that error is
// returned.
func (ic *IdentityContext) SignOut(ctx context.Context) error {
	ic.mu.Lock()
	defer ic.mu.Unlock()

	err := ic.repo.DeleteMany(ctx, common.SessionTokenKey, common.SessionIdentityKey)
	if err != nil {
		ic.log.Error(ctx, "failed to delete persisted session", "error", err)
		err = fmt.Errorf("delete session: %w", err)
	}

	if prev := ic.current.Get(); prev != nil {
		ic.log.Info(ctx, "signed out", "user_id", prev.ID)
	}
	ic.publish(nil, "")
	return err
}

// publish must be called with ic.mu held.
func (ic *IdentityContext) publish(id *models.Identity, token string) {
	ic.tokMu.Lock()
	ic.token = token
	ic.tokMu.Unlock()

	if id != nil {
		cp := *id
		id = &cp
	}
	ic.current.SetSync(id)
}

// Current returns a copy of the current identity, or nil when anonymous.
func (ic *IdentityContext) Current() *models.Identity {
	id := ic.current.Get()
	if id == nil {
		return nil
	}
	cp := *id
	return &cp
}

func (ic *IdentityContext) Token() string {
	ic.tokMu.RLock()
	defer ic.tokMu.RUnlock()
	return ic.token
}

func (ic *IdentityContext) IsAuthenticated() bool {
	return ic.current.Get() != nil && ic.Token() != ""
}

func (ic *IdentityContext) HasRole(role models.Role) bool {
	id := ic.current.Get()
	return id != nil && id.Role == role
}

func (ic *IdentityContext) IsAdmin() bool {
	return ic.HasRole(models.RoleAdmin)
}

// Changes replays the current identity to each new subscriber, then every
// change. Delivered values are shared and must not be modified.
func (ic *IdentityContext) Changes() observable.Observable[*models.Identity] {
	return ic.current
}

// RequireRole returns common.ErrNotAuthenticated when anonymous and
// common.ErrForbidden when the current identity lacks role.
func (ic *IdentityContext) RequireRole(role models.Role) error {
	id := ic.current.Get()
	if id == nil {
		return common.ErrNotAuthenticated
	}
	if id.Role != role {
		return fmt.Errorf("role %s required: %w", role, common.ErrForbidden)
	}
	return nil
}
