package services

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/storefront/internal/client/models"
	"github.com/dmitrijs2005/storefront/internal/common"
)

// Directory is the simulated identity backend. It is seeded with one
// administrator and one standard user; registrations live until the process
// exits.
type Directory struct {
	mu         sync.RWMutex
	identities []models.Identity
	now        func() time.Time
}

func NewDirectory(now func() time.Time) *Directory {
	if now == nil {
		now = time.Now
	}
	at := now().UTC()
	return &Directory{
		now: now,
		identities: []models.Identity{
			{ID: 1, Email: "admin@example.com", FirstName: "Admin", LastName: "User", Role: models.RoleAdmin, CreatedAt: at},
			{ID: 2, Email: "user@example.com", FirstName: "Regular", LastName: "User", Role: models.RoleUser, CreatedAt: at},
		},
	}
}

// FindByEmail matches case-insensitively and returns common.ErrNotFound on a
// miss.
func (d *Directory) FindByEmail(email string) (models.Identity, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	email = strings.TrimSpace(email)
	for _, id := range d.identities {
		if strings.EqualFold(id.Email, email) {
			return id, nil
		}
	}
	return models.Identity{}, fmt.Errorf("identity %q: %w", email, common.ErrNotFound)
}

// Create registers a standard user with the next free id.
func (d *Directory) Create(p models.Profile) (models.Identity, error) {
	email := strings.TrimSpace(p.Email)
	if email == "" || !strings.Contains(email, "@") {
		return models.Identity{}, fmt.Errorf("email %q: %w", p.Email, common.ErrValidation)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	var maxID int64
	for _, id := range d.identities {
		if strings.EqualFold(id.Email, email) {
			return models.Identity{}, fmt.Errorf("identity %q: %w", email, common.ErrAlreadyExists)
		}
		maxID = max(maxID, id.ID)
	}

	id := models.Identity{
		ID:        maxID + 1,
		Email:     email,
		FirstName: strings.TrimSpace(p.FirstName),
		LastName:  strings.TrimSpace(p.LastName),
		Role:      models.RoleUser,
		CreatedAt: d.now().UTC(),
	}
	d.identities = append(d.identities, id)
	return id, nil
}

// Remove deletes the identity with id. Removing an unknown id is a no-op.
func (d *Directory) Remove(id int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.identities = slices.DeleteFunc(d.identities, func(i models.Identity) bool { return i.ID == id })
}
