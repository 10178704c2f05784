package services

import (
	"strings"

	"genesis-events/models"
)

// RoleResolver maps an email to a role. Injected rather than compiled-in so
// deployments can swap the backing table.
type RoleResolver interface {
	Resolve(email string) models.Role
}

type envRoleResolver struct {
	admins     map[string]bool
	volunteers map[string]bool
}

// NewEnvRoleResolver builds a resolver from comma-separated allow-lists,
// typically ADMIN_EMAILS and VOLUNTEER_EMAILS.
func NewEnvRoleResolver(adminCSV, volunteerCSV string) RoleResolver {
	return &envRoleResolver{
		admins:     parseEmailList(adminCSV),
		volunteers: parseEmailList(volunteerCSV),
	}
}

func parseEmailList(raw string) map[string]bool {
	m := map[string]bool{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			m[part] = true
		}
	}
	return m
}

func (r *envRoleResolver) Resolve(email string) models.Role {
	email = strings.ToLower(strings.TrimSpace(email))
	if r.admins[email] {
		return models.RoleAdmin
	}
	if r.volunteers[email] {
		return models.RoleVolunteer
	}
	return models.RoleParticipant
}

// storeRoleResolver consults the staff table first and falls back to the
// env allow-lists, so seeded deployments work before any staff rows exist.
type storeRoleResolver struct {
	store    Store
	fallback RoleResolver
}

func NewStoreRoleResolver(store Store, fallback RoleResolver) RoleResolver {
	return &storeRoleResolver{store: store, fallback: fallback}
}

func (r *storeRoleResolver) Resolve(email string) models.Role {
	u, err := r.store.GetStaffByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err == nil && u != nil {
		return u.Role
	}
	if r.fallback != nil {
		return r.fallback.Resolve(email)
	}
	return models.RoleParticipant
}
