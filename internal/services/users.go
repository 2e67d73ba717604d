package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"startiq/internal/core"
	"startiq/internal/observability"
	"startiq/internal/persistence"
)

// RegisterResult describes a stored registration
type RegisterResult struct {
	UID        string `json:"uid"`
	Role       string `json:"role"`
	Collection string `json:"collection"`
	Message    string `json:"message"`
}

// UserService stores founder and investor registrations
type UserService struct {
	db      persistence.Database
	posthog *observability.PostHogClient
	log     *slog.Logger
}

// NewUserService creates a user service
func NewUserService(deps Dependencies) *UserService {
	deps = deps.withDefaults()
	return &UserService{db: deps.DB, posthog: deps.PostHog, log: deps.Logger}
}

// CollectionForRole maps a registration role to its collection.
// Roles are matched case-insensitively.
func CollectionForRole(role string) (string, bool) {
	switch strings.ToLower(role) {
	case core.RoleFounder, core.RoleStartup:
		return core.CollectionFounders, true
	case core.RoleInvestor:
		return core.CollectionInvestors, true
	default:
		return "", false
	}
}

// Register stores profile for uid. The role is kept as given.
func (s *UserService) Register(ctx context.Context, uid, role string, profile map[string]any) (*RegisterResult, error) {
	if uid == "" || role == "" {
		return nil, core.NewValidationError("uid", "uid and role are required")
	}

	collection, ok := CollectionForRole(role)
	if !ok {
		return nil, core.NewValidationError("role", "Invalid role provided")
	}

	if err := s.db.Users().Register(ctx, collection, uid, role, profile); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.log.Info("User registered", "uid", uid, "collection", collection)
	if err := s.posthog.TrackUserRegistered(ctx, uid, role); err != nil {
		s.log.Debug("Failed to track registration event", "error", err.Error())
	}

	return &RegisterResult{
		UID:        uid,
		Role:       role,
		Collection: collection,
		Message:    fmt.Sprintf("User registered in %s successfully!", collection),
	}, nil
}
