package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"speed-review/models"
	"speed-review/storage"
)

// DefaultRoles werden bei leerer Rollen-Tabelle angelegt.
var DefaultRoles = []models.Role{
	{Email: "SPEED-moderator1@pricehound.tech", Role: models.RoleModerator},
	{Email: "SPEED-moderator2@pricehound.tech", Role: models.RoleModerator},
	{Email: "SPEED-analyst1@pricehound.tech", Role: models.RoleAnalyst},
	{Email: "SPEED-analyst2@pricehound.tech", Role: models.RoleAnalyst},
}

// RoleInput ist der Request-Body für Anlegen und Ändern.
type RoleInput struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// RoleService verwaltet die Zuordnung E-Mail -> Reviewer-Rolle.
type RoleService struct {
	Store  storage.RoleStore
	Logger *zap.Logger
}

// NewRoleService erstellt einen neuen RoleService.
func NewRoleService(store storage.RoleStore, logger *zap.Logger) *RoleService {
	return &RoleService{Store: store, Logger: logger}
}

func (s *RoleService) List(ctx context.Context) ([]models.Role, error) {
	return s.Store.ListRoles(ctx)
}

func (s *RoleService) Get(ctx context.Context, email string) (*models.Role, error) {
	role, err := s.Store.GetRole(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, mapStoreError(err)
	}
	return role, nil
}

// Create legt eine Rolle an. Eine bereits vergebene E-Mail liefert ErrConflict.
func (s *RoleService) Create(ctx context.Context, in RoleInput) (*models.Role, error) {
	role, err := parseRoleInput(in)
	if err != nil {
		return nil, err
	}
	if err := s.Store.CreateRole(ctx, role); err != nil {
		return nil, mapStoreError(err)
	}
	s.Logger.Info("Rolle angelegt", zap.String("email", role.Email), zap.String("role", string(role.Role)))
	return role, nil
}

// Update ersetzt E-Mail und Rolle des Eintrags zu email. Eine leere E-Mail im Body behält die alte.
func (s *RoleService) Update(ctx context.Context, email string, in RoleInput) (*models.Role, error) {
	email = strings.TrimSpace(email)
	if strings.TrimSpace(in.Email) == "" {
		in.Email = email
	}
	role, err := parseRoleInput(in)
	if err != nil {
		return nil, err
	}
	updated, err := s.Store.UpdateRole(ctx, email, *role)
	if err != nil {
		return nil, mapStoreError(err)
	}
	s.Logger.Info("Rolle geändert", zap.String("email", email), zap.String("new_email", updated.Email), zap.String("role", string(updated.Role)))
	return updated, nil
}

func (s *RoleService) Delete(ctx context.Context, email string) error {
	if err := s.Store.DeleteRole(ctx, strings.TrimSpace(email)); err != nil {
		return mapStoreError(err)
	}
	s.Logger.Info("Rolle gelöscht", zap.String("email", email))
	return nil
}

// SeedDefaults legt defaults an, solange noch keine Rolle existiert.
func (s *RoleService) SeedDefaults(ctx context.Context, defaults []models.Role) error {
	count, err := s.Store.CountRoles(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for _, r := range defaults {
		role := r
		if err := s.Store.CreateRole(ctx, &role); err != nil {
			return mapStoreError(err)
		}
	}
	s.Logger.Info("Default roles seeded.", zap.Int("count", len(defaults)))
	return nil
}

func parseRoleInput(in RoleInput) (*models.Role, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, validationError("a valid email is required")
	}
	name, err := models.ParseRoleName(in.Role)
	if err != nil {
		return nil, validationError("%v", err)
	}
	return &models.Role{Email: email, Role: name}, nil
}
