package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/keyfold/keyfold-server/internal/api/http/middleware"
	"github.com/keyfold/keyfold-server/internal/model"
	"github.com/keyfold/keyfold-server/internal/service"
)

// ProjectKeyService is the project-level key distribution surface the handler
// depends on.
type ProjectKeyService interface {
	GetLatestProjectKey(ctx context.Context, actor model.Actor, projectID uuid.UUID) (*model.ProjectKeyWithSender, error)
	AddMembersToProject(ctx context.Context, params service.AddMembersParams) error
}

// ProjectKeyHandler serves wrapped project key records over REST.
type ProjectKeyHandler struct {
	service ProjectKeyService
}

func NewProjectKeyHandler(service ProjectKeyService) *ProjectKeyHandler {
	return &ProjectKeyHandler{service: service}
}

type projectKeyResponse struct {
	ID              uuid.UUID  `json:"id"`
	ProjectID       uuid.UUID  `json:"projectId"`
	ReceiverID      uuid.UUID  `json:"receiverId"`
	SenderID        *uuid.UUID `json:"senderId,omitempty"`
	EncryptedKey    string     `json:"encryptedKey"`
	Nonce           string     `json:"nonce"`
	SenderPublicKey string     `json:"senderPublicKey"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// GetLatest returns the caller's newest wrapped key for the project.
func (h *ProjectKeyHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthenticated)
		return
	}

	projectID, err := uuid.Parse(chi.URLParam(r, "projectId"))
	if err != nil {
		badRequest(w, "invalid project id")
		return
	}

	key, err := h.service.GetLatestProjectKey(r.Context(), actor, projectID)
	if err != nil {
		writeError(w, err)
		return
	}
	if key == nil {
		writeError(w, fmt.Errorf("project key for project %s: %w", projectID, model.ErrNotFound))
		return
	}

	writeJSON(w, http.StatusOK, projectKeyResponse{
		ID:              key.ID,
		ProjectID:       key.ProjectID,
		ReceiverID:      key.ReceiverID,
		SenderID:        key.SenderID,
		EncryptedKey:    key.EncryptedKey,
		Nonce:           key.Nonce,
		SenderPublicKey: key.SenderPublicKey,
		CreatedAt:       key.CreatedAt,
	})
}

type addProjectMembersRequest struct {
	PrivateKey    string      `json:"privateKey"`
	MemberUserIDs []uuid.UUID `json:"memberUserIds"`
}

// AddMembers invites users into the project and issues them wrapped keys.
func (h *ProjectKeyHandler) AddMembers(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthenticated)
		return
	}

	projectID, err := uuid.Parse(chi.URLParam(r, "projectId"))
	if err != nil {
		badRequest(w, "invalid project id")
		return
	}

	var req addProjectMembersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.PrivateKey == "" || len(req.MemberUserIDs) == 0 {
		badRequest(w, "privateKey and memberUserIds are required")
		return
	}

	if err := h.service.AddMembersToProject(r.Context(), service.AddMembersParams{
		ProjectID:         projectID,
		Inviter:           actor,
		InviterPrivateKey: req.PrivateKey,
		MemberUserIDs:     req.MemberUserIDs,
	}); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
