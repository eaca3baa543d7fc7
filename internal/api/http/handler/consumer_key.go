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
)

// ConsumerKeyService is the org-level key distribution surface the handler
// depends on.
type ConsumerKeyService interface {
	GetLatestConsumerKey(ctx context.Context, actor model.Actor, orgID uuid.UUID) (*model.ConsumerKeyWithSender, error)
	ShareConsumerKeyWithMembers(ctx context.Context, actor model.Actor, orgID uuid.UUID, holderPrivateKey string, memberUserIDs []uuid.UUID) error
}

// ConsumerKeyHandler serves wrapped org key records over REST.
type ConsumerKeyHandler struct {
	service ConsumerKeyService
}

func NewConsumerKeyHandler(service ConsumerKeyService) *ConsumerKeyHandler {
	return &ConsumerKeyHandler{service: service}
}

type consumerKeyResponse struct {
	ID              uuid.UUID  `json:"id"`
	OrganizationID  uuid.UUID  `json:"organizationId"`
	ReceiverID      uuid.UUID  `json:"receiverId"`
	SenderID        *uuid.UUID `json:"senderId,omitempty"`
	EncryptedKey    string     `json:"encryptedKey"`
	Nonce           string     `json:"nonce"`
	SenderPublicKey string     `json:"senderPublicKey"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// GetLatest returns the caller's newest wrapped key for the organization,
// together with the sender public key needed to open it.
func (h *ConsumerKeyHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthenticated)
		return
	}

	orgID, err := uuid.Parse(chi.URLParam(r, "orgId"))
	if err != nil {
		badRequest(w, "invalid organization id")
		return
	}

	key, err := h.service.GetLatestConsumerKey(r.Context(), actor, orgID)
	if err != nil {
		writeError(w, err)
		return
	}
	if key == nil {
		writeError(w, fmt.Errorf("consumer key for organization %s: %w", orgID, model.ErrNotFound))
		return
	}

	writeJSON(w, http.StatusOK, consumerKeyResponse{
		ID:              key.ID,
		OrganizationID:  key.OrgID,
		ReceiverID:      key.ReceiverID,
		SenderID:        key.SenderID,
		EncryptedKey:    key.EncryptedKey,
		Nonce:           key.Nonce,
		SenderPublicKey: key.SenderPublicKey,
		CreatedAt:       key.CreatedAt,
	})
}

type shareConsumerKeyRequest struct {
	PrivateKey    string      `json:"privateKey"`
	MemberUserIDs []uuid.UUID `json:"memberUserIds"`
}

// Share re-seals the caller's consumer key for the listed members.
func (h *ConsumerKeyHandler) Share(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthenticated)
		return
	}

	orgID, err := uuid.Parse(chi.URLParam(r, "orgId"))
	if err != nil {
		badRequest(w, "invalid organization id")
		return
	}

	var req shareConsumerKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.PrivateKey == "" || len(req.MemberUserIDs) == 0 {
		badRequest(w, "privateKey and memberUserIds are required")
		return
	}

	if err := h.service.ShareConsumerKeyWithMembers(r.Context(), actor, orgID, req.PrivateKey, req.MemberUserIDs); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
