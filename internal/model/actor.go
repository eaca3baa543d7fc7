package model

import (
	"context"

	"github.com/google/uuid"
)

// ActorType enumerates the kinds of identities that can call the API.
type ActorType string

const (
	// ActorTypeUser is a human user authenticated via JWT.
	ActorTypeUser ActorType = "user"
	// ActorTypeIdentity is a machine identity (access token).
	ActorTypeIdentity ActorType = "identity"
	// ActorTypeServiceToken is a legacy service token identity.
	ActorTypeServiceToken ActorType = "service-token"
)

// AuthMethod enumerates how the actor authenticated.
type AuthMethod string

const (
	AuthMethodJWT         AuthMethod = "jwt"
	AuthMethodAPIKey      AuthMethod = "api-key"
	AuthMethodAccessToken AuthMethod = "access-token"
)

// Actor identifies the caller of a service operation together with the
// tenancy its credentials were issued for.
type Actor struct {
	ID         uuid.UUID
	Type       ActorType
	AuthMethod AuthMethod
	// OrgID is the organization the actor's credentials are bound to.
	// Zero when the credential is not org-scoped.
	OrgID uuid.UUID
}

// OrgPermissionChecker authorizes actors against an organization. It must be
// consulted before any read of key or secret material.
type OrgPermissionChecker interface {
	CheckOrgPermission(ctx context.Context, actor Actor, orgID uuid.UUID) error
}

// ProjectPermissionChecker authorizes actors against a project.
type ProjectPermissionChecker interface {
	CheckProjectPermission(ctx context.Context, actor Actor, projectID uuid.UUID) error
}

// TokenManager issues and validates actor credentials.
type TokenManager interface {
	GenerateAccessToken(actor Actor) (string, error)
	ParseAccessToken(token string) (Actor, error)
}
