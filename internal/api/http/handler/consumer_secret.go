package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/keyfold/keyfold-server/internal/api/http/middleware"
	"github.com/keyfold/keyfold-server/internal/model"
	"github.com/keyfold/keyfold-server/internal/service"
)

// ConsumerSecretService is the personal secret surface the handler depends on.
type ConsumerSecretService interface {
	CreateConsumerSecret(ctx context.Context, params service.CreateConsumerSecretParams) (model.ConsumerSecret, error)
	GetConsumerSecrets(ctx context.Context, actor model.Actor, orgID uuid.UUID) ([]model.ConsumerSecret, error)
	UpdateConsumerSecret(ctx context.Context, actor model.Actor, orgID, secretID uuid.UUID, fields model.ConsumerSecretFields, skipMultilineEncoding bool) (model.ConsumerSecret, error)
	DeleteConsumerSecret(ctx context.Context, actor model.Actor, orgID, secretID uuid.UUID) (model.ConsumerSecret, error)
}

// ConsumerSecretHandler serves personal encrypted secrets over REST. All
// payload fields are opaque ciphertext; the handler only moves triples.
type ConsumerSecretHandler struct {
	service ConsumerSecretService
}

func NewConsumerSecretHandler(service ConsumerSecretService) *ConsumerSecretHandler {
	return &ConsumerSecretHandler{service: service}
}

type encryptedFieldPayload struct {
	Ciphertext string `json:"ciphertext"`
	IV         string `json:"iv"`
	Tag        string `json:"tag"`
}

func (p encryptedFieldPayload) toModel() model.EncryptedField {
	return model.EncryptedField{Ciphertext: p.Ciphertext, IV: p.IV, Tag: p.Tag}
}

func fieldPayload(f model.EncryptedField) encryptedFieldPayload {
	return encryptedFieldPayload{Ciphertext: f.Ciphertext, IV: f.IV, Tag: f.Tag}
}

type consumerSecretFieldsPayload struct {
	SecretName encryptedFieldPayload `json:"secretName"`
	FieldOne   encryptedFieldPayload `json:"fieldOne"`
	FieldTwo   encryptedFieldPayload `json:"fieldTwo"`
	FieldThree encryptedFieldPayload `json:"fieldThree"`
	FieldFour  encryptedFieldPayload `json:"fieldFour"`
}

func (p consumerSecretFieldsPayload) toModel() model.ConsumerSecretFields {
	return model.ConsumerSecretFields{
		SecretName: p.SecretName.toModel(),
		FieldOne:   p.FieldOne.toModel(),
		FieldTwo:   p.FieldTwo.toModel(),
		FieldThree: p.FieldThree.toModel(),
		FieldFour:  p.FieldFour.toModel(),
	}
}

type consumerSecretResponse struct {
	ID                    uuid.UUID                   `json:"id"`
	Type                  model.ConsumerSecretType    `json:"type"`
	UserID                uuid.UUID                   `json:"userId"`
	OrganizationID        uuid.UUID                   `json:"organizationId"`
	Fields                consumerSecretFieldsPayload `json:"fields"`
	SkipMultilineEncoding bool                        `json:"skipMultilineEncoding"`
	Algorithm             string                      `json:"algorithm"`
	KeyEncoding           string                      `json:"keyEncoding"`
	Metadata              map[string]string           `json:"metadata,omitempty"`
	CreatedAt             time.Time                   `json:"createdAt"`
	UpdatedAt             time.Time                   `json:"updatedAt"`
}

func secretResponse(secret model.ConsumerSecret) consumerSecretResponse {
	return consumerSecretResponse{
		ID:             secret.ID,
		Type:           secret.Type,
		UserID:         secret.UserID,
		OrganizationID: secret.OrgID,
		Fields: consumerSecretFieldsPayload{
			SecretName: fieldPayload(secret.Fields.SecretName),
			FieldOne:   fieldPayload(secret.Fields.FieldOne),
			FieldTwo:   fieldPayload(secret.Fields.FieldTwo),
			FieldThree: fieldPayload(secret.Fields.FieldThree),
			FieldFour:  fieldPayload(secret.Fields.FieldFour),
		},
		SkipMultilineEncoding: secret.SkipMultilineEncoding,
		Algorithm:             secret.Algorithm,
		KeyEncoding:           secret.KeyEncoding,
		Metadata:              secret.Metadata,
		CreatedAt:             secret.CreatedAt,
		UpdatedAt:             secret.UpdatedAt,
	}
}

type createConsumerSecretRequest struct {
	OrganizationID        uuid.UUID                   `json:"organizationId"`
	Type                  model.ConsumerSecretType    `json:"type"`
	Fields                consumerSecretFieldsPayload `json:"fields"`
	SkipMultilineEncoding bool                        `json:"skipMultilineEncoding"`
	Metadata              map[string]string           `json:"metadata"`
}

// Create stores a new personal secret envelope.
func (h *ConsumerSecretHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthenticated)
		return
	}

	var req createConsumerSecretRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.OrganizationID == uuid.Nil {
		badRequest(w, "organizationId is required")
		return
	}

	secret, err := h.service.CreateConsumerSecret(r.Context(), service.CreateConsumerSecretParams{
		Actor:                 actor,
		OrgID:                 req.OrganizationID,
		Type:                  req.Type,
		Fields:                req.Fields.toModel(),
		SkipMultilineEncoding: req.SkipMultilineEncoding,
		Metadata:              req.Metadata,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, secretResponse(secret))
}

// List returns the caller's personal secrets in the organization.
func (h *ConsumerSecretHandler) List(w http.ResponseWriter, r *http.Request) {
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

	secrets, err := h.service.GetConsumerSecrets(r.Context(), actor, orgID)
	if err != nil {
		writeError(w, err)
		return
	}

	response := make([]consumerSecretResponse, 0, len(secrets))
	for _, secret := range secrets {
		response = append(response, secretResponse(secret))
	}

	writeJSON(w, http.StatusOK, response)
}

type updateConsumerSecretRequest struct {
	OrganizationID        uuid.UUID                   `json:"organizationId"`
	Fields                consumerSecretFieldsPayload `json:"fields"`
	SkipMultilineEncoding bool                        `json:"skipMultilineEncoding"`
}

// Update replaces all field triples of one secret.
func (h *ConsumerSecretHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthenticated)
		return
	}

	secretID, err := uuid.Parse(chi.URLParam(r, "secretId"))
	if err != nil {
		badRequest(w, "invalid secret id")
		return
	}

	var req updateConsumerSecretRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.OrganizationID == uuid.Nil {
		badRequest(w, "organizationId is required")
		return
	}

	secret, err := h.service.UpdateConsumerSecret(r.Context(), actor, req.OrganizationID, secretID, req.Fields.toModel(), req.SkipMultilineEncoding)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, secretResponse(secret))
}

type deleteConsumerSecretRequest struct {
	OrganizationID uuid.UUID `json:"organizationId"`
}

// Delete removes one secret owned by the caller.
func (h *ConsumerSecretHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthenticated)
		return
	}

	secretID, err := uuid.Parse(chi.URLParam(r, "secretId"))
	if err != nil {
		badRequest(w, "invalid secret id")
		return
	}

	var req deleteConsumerSecretRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.OrganizationID == uuid.Nil {
		badRequest(w, "organizationId is required")
		return
	}

	secret, err := h.service.DeleteConsumerSecret(r.Context(), actor, req.OrganizationID, secretID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, secretResponse(secret))
}
