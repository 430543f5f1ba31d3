package service

import (
	"context"
	"fmt"
	"time"

	"optibuy/internal/middleware"
	"optibuy/internal/model"
	"optibuy/internal/repository"
	"optibuy/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type UpdateRolePermissionsRequest struct {
	PermissionCodes []string `json:"permission_codes" binding:"required"`
}

type TogglePermissionRequest struct {
	Code string `json:"code" binding:"required"`
}

type RoleResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	IsSystem    bool                 `json:"is_system"`
	Permissions []PermissionResponse `json:"permissions"`
	CreatedAt   string               `json:"created_at"`
}

type PermissionResponse struct {
	ID    string `json:"id"`
	Code  string `json:"code"`
	Name  string `json:"name"`
	Group string `json:"group"`
}

// --- Interface ---

// RoleService manages the closed role set and its permission grants. Roles are
// never created or deleted at runtime — only their granted keys change.
type RoleService interface {
	ListRoles(ctx context.Context) ([]RoleResponse, error)
	GetRole(ctx context.Context, id string) (*RoleResponse, error)
	ListPermissions(ctx context.Context) ([]PermissionResponse, error)
	UpdateRolePermissions(ctx context.Context, roleID string, req UpdateRolePermissionsRequest, actor model.Actor) (*RoleResponse, error)
	TogglePermission(ctx context.Context, roleID string, req TogglePermissionRequest, actor model.Actor) (*RoleResponse, error)
	GetPermissionsByRoleName(ctx context.Context, roleName string) ([]string, error)
	SeedDefaultRolesAndPermissions(ctx context.Context) error
}

type roleService struct {
	db        *gorm.DB
	auditRepo repository.AuditRepository
}

func NewRoleService(db *gorm.DB, auditRepo repository.AuditRepository) RoleService {
	return &roleService{db: db, auditRepo: auditRepo}
}

// --- Implementation ---

func (s *roleService) ListRoles(ctx context.Context) ([]RoleResponse, error) {
	var roles []model.Role
	if err := s.db.WithContext(ctx).Preload("Permissions").Order("name ASC").Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch roles: %w", err)
	}

	res := make([]RoleResponse, 0, len(roles))
	for _, r := range roles {
		res = append(res, toRoleResponse(r))
	}
	return res, nil
}

func (s *roleService) GetRole(ctx context.Context, id string) (*RoleResponse, error) {
	roleID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("invalid role id")
	}

	var role model.Role
	if err := s.db.WithContext(ctx).Preload("Permissions").First(&role, "id = ?", roleID).Error; err != nil {
		return nil, apperr.NotFound("role not found")
	}

	resp := toRoleResponse(role)
	return &resp, nil
}

func (s *roleService) ListPermissions(ctx context.Context) ([]PermissionResponse, error) {
	var perms []model.Permission
	if err := s.db.WithContext(ctx).Order("\"group\" ASC, code ASC").Find(&perms).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch permissions: %w", err)
	}

	res := make([]PermissionResponse, 0, len(perms))
	for _, p := range perms {
		res = append(res, toPermissionResponse(p))
	}
	return res, nil
}

// UpdateRolePermissions replaces the role's granted set with the given codes.
// Emptying the admin role is stored faithfully; the runtime override still
// grants admin everything.
func (s *roleService) UpdateRolePermissions(ctx context.Context, roleID string, req UpdateRolePermissionsRequest, actor model.Actor) (*RoleResponse, error) {
	id, err := uuid.Parse(roleID)
	if err != nil {
		return nil, apperr.Validation("invalid role id")
	}

	var role model.Role
	if err := s.db.WithContext(ctx).First(&role, "id = ?", id).Error; err != nil {
		return nil, apperr.NotFound("role not found")
	}

	var perms []model.Permission
	if len(req.PermissionCodes) > 0 {
		if err := s.db.WithContext(ctx).Where("code IN ?", req.PermissionCodes).Find(&perms).Error; err != nil {
			return nil, fmt.Errorf("failed to fetch permissions: %w", err)
		}
		if len(perms) != len(req.PermissionCodes) {
			return nil, apperr.Validation("request contains unknown permission codes")
		}
	}

	if err := s.db.WithContext(ctx).Model(&role).Association("Permissions").Replace(perms); err != nil {
		return nil, fmt.Errorf("failed to update permissions: %w", err)
	}

	s.afterPermissionChange(ctx, role, actor, fmt.Sprintf(`{"permission_codes":%d}`, len(perms)))

	return s.GetRole(ctx, roleID)
}

// TogglePermission flips a single (role, key) grant — the operation behind
// each checkbox on the settings screen.
func (s *roleService) TogglePermission(ctx context.Context, roleID string, req TogglePermissionRequest, actor model.Actor) (*RoleResponse, error) {
	id, err := uuid.Parse(roleID)
	if err != nil {
		return nil, apperr.Validation("invalid role id")
	}

	var role model.Role
	if err := s.db.WithContext(ctx).Preload("Permissions").First(&role, "id = ?", id).Error; err != nil {
		return nil, apperr.NotFound("role not found")
	}

	var perm model.Permission
	if err := s.db.WithContext(ctx).First(&perm, "code = ?", req.Code).Error; err != nil {
		return nil, apperr.Validation("unknown permission code '%s'", req.Code)
	}

	granted := false
	for _, p := range role.Permissions {
		if p.Code == req.Code {
			granted = true
			break
		}
	}

	assoc := s.db.WithContext(ctx).Model(&role).Association("Permissions")
	if granted {
		err = assoc.Delete(&perm)
	} else {
		err = assoc.Append(&perm)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to toggle permission: %w", err)
	}

	s.afterPermissionChange(ctx, role, actor, fmt.Sprintf(`{"code":%q,"granted":%t}`, req.Code, !granted))

	return s.GetRole(ctx, roleID)
}

// afterPermissionChange records the audit entry and drops the middleware's
// cached codes so the new grants apply within the request, not after TTL.
func (s *roleService) afterPermissionChange(ctx context.Context, role model.Role, actor model.Actor, details string) {
	_ = s.auditRepo.Log(ctx, &model.AuditLog{
		UserID:     &actor.ID,
		Action:     model.ActionUpdatePermissions,
		EntityID:   role.ID.String(),
		EntityName: role.Name,
		Details:    details,
	})
	middleware.ClearPermissionCache(role.Name)
}

func (s *roleService) GetPermissionsByRoleName(ctx context.Context, roleName string) ([]string, error) {
	var role model.Role
	if err := s.db.WithContext(ctx).Preload("Permissions").Where("name = ?", roleName).First(&role).Error; err != nil {
		return nil, apperr.NotFound("role '%s' not found", roleName)
	}

	codes := make([]string, 0, len(role.Permissions))
	for _, p := range role.Permissions {
		codes = append(codes, p.Code)
	}
	return codes, nil
}

// SeedDefaultRolesAndPermissions upserts the permission catalogue and creates
// the three built-in roles with their default grants. Grants are only assigned
// when a role is first created — later customizations survive restarts.
func (s *roleService) SeedDefaultRolesAndPermissions(ctx context.Context) error {
	defaultPermissions := []model.Permission{
		{Code: model.PermDashboardView, Name: "Ver Dashboard", Group: "dashboard"},
		{Code: model.PermRequestView, Name: "Ver Solicitações", Group: "requests"},
		{Code: model.PermRequestCreate, Name: "Criar Solicitações", Group: "requests"},
		{Code: model.PermRequestEdit, Name: "Editar / Cancelar Solicitações", Group: "requests"},
		{Code: model.PermRequestApprove, Name: "Aprovar para Cotação", Group: "requests"},
		{Code: model.PermQuotationView, Name: "Ver Cotações", Group: "quotations"},
		{Code: model.PermQuotationEdit, Name: "Gerenciar Propostas", Group: "quotations"},
		{Code: model.PermQuotationFinal, Name: "Finalizar Compra", Group: "quotations"},
		{Code: model.PermCompletedView, Name: "Ver Concluídas", Group: "completed"},
		{Code: model.PermCompletedExport, Name: "Exportar Relatório", Group: "completed"},
		{Code: model.PermSettingsView, Name: "Ver Configurações", Group: "settings"},
		{Code: model.PermSettingsEdit, Name: "Editar Configurações", Group: "settings"},
	}

	for i := range defaultPermissions {
		p := &defaultPermissions[i]
		var existing model.Permission
		result := s.db.WithContext(ctx).Where("code = ?", p.Code).First(&existing)
		if result.Error != nil {
			if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
				return fmt.Errorf("failed to seed permission '%s': %w", p.Code, err)
			}
		} else {
			p.ID = existing.ID
			s.db.WithContext(ctx).Exec(
				`UPDATE permissions SET name = ?, "group" = ? WHERE id = ?`,
				p.Name, p.Group, existing.ID,
			)
		}
	}

	permByCode := make(map[string]model.Permission, len(defaultPermissions))
	for _, p := range defaultPermissions {
		permByCode[p.Code] = p
	}

	allCodes := make([]string, 0, len(defaultPermissions))
	for _, p := range defaultPermissions {
		allCodes = append(allCodes, p.Code)
	}

	roleDefinitions := map[string]struct {
		Description string
		PermCodes   []string
	}{
		model.RoleAdmin: {
			Description: "Administrador — acesso total",
			PermCodes:   allCodes,
		},
		model.RoleBuyer: {
			Description: "Comprador — conduz cotações e finaliza compras",
			PermCodes: []string{
				model.PermDashboardView, model.PermRequestView, model.PermRequestApprove,
				model.PermQuotationView, model.PermQuotationEdit, model.PermQuotationFinal,
				model.PermCompletedView, model.PermCompletedExport,
			},
		},
		model.RoleRequester: {
			Description: "Solicitante — cria e acompanha solicitações",
			PermCodes: []string{
				model.PermDashboardView, model.PermRequestView, model.PermRequestCreate,
				model.PermRequestEdit, model.PermQuotationView, model.PermCompletedView,
			},
		},
	}

	for roleName, def := range roleDefinitions {
		var role model.Role
		result := s.db.WithContext(ctx).Where("name = ?", roleName).First(&role)
		if result.Error == nil {
			// Already seeded — leave any customized grants alone
			continue
		}

		role = model.Role{
			Name:        roleName,
			Description: def.Description,
			IsSystem:    true,
		}
		if err := s.db.WithContext(ctx).Create(&role).Error; err != nil {
			return fmt.Errorf("failed to seed role '%s': %w", roleName, err)
		}

		perms := make([]model.Permission, 0, len(def.PermCodes))
		for _, code := range def.PermCodes {
			if p, ok := permByCode[code]; ok {
				perms = append(perms, p)
			}
		}
		if err := s.db.WithContext(ctx).Model(&role).Association("Permissions").Replace(perms); err != nil {
			return fmt.Errorf("failed to assign permissions to role '%s': %w", roleName, err)
		}
	}

	return nil
}

// --- Helpers ---

func toRoleResponse(r model.Role) RoleResponse {
	perms := make([]PermissionResponse, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		perms = append(perms, toPermissionResponse(p))
	}

	return RoleResponse{
		ID:          r.ID.String(),
		Name:        r.Name,
		Description: r.Description,
		IsSystem:    r.IsSystem,
		Permissions: perms,
		CreatedAt:   r.CreatedAt.Format(time.RFC3339),
	}
}

func toPermissionResponse(p model.Permission) PermissionResponse {
	return PermissionResponse{
		ID:    p.ID.String(),
		Code:  p.Code,
		Name:  p.Name,
		Group: p.Group,
	}
}
