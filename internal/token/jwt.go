package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/keyfold/keyfold-server/internal/model"
)

// Claims represents JWT claims carrying the full actor identity.
type Claims struct {
	jwt.RegisteredClaims
	UserID     uuid.UUID        `json:"user_id"`
	ActorType  model.ActorType  `json:"actor_type"`
	AuthMethod model.AuthMethod `json:"auth_method"`
	OrgID      uuid.UUID        `json:"org_id,omitempty"`
	TokenType  string           `json:"typ"`
}

// JWT implements model.TokenManager backed by symmetric HMAC.
type JWT struct {
	secretKey string
}

// NewJWT creates a new JWT token manager with the provided secret key.
func NewJWT(secretKey string) model.TokenManager {
	return &JWT{secretKey: secretKey}
}

const (
	accessTTL  = 15 * time.Minute
	typeAccess = "access"
)

// GenerateAccessToken creates a short-lived access token for the actor.
func (j *JWT) GenerateAccessToken(actor model.Actor) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(accessTTL)),
		},
		UserID:     actor.ID,
		ActorType:  actor.Type,
		AuthMethod: actor.AuthMethod,
		OrgID:      actor.OrgID,
		TokenType:  typeAccess,
	})

	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// ParseAccessToken validates a token and extracts the actor from it.
func (j *JWT) ParseAccessToken(tokenString string) (model.Actor, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	})
	if err != nil {
		return model.Actor{}, fmt.Errorf("failed to parse access token: %w", err)
	}
	if !token.Valid {
		return model.Actor{}, fmt.Errorf("access token is invalid")
	}
	if claims.TokenType != typeAccess {
		return model.Actor{}, fmt.Errorf("token type mismatch: %s", claims.TokenType)
	}
	if claims.UserID == uuid.Nil {
		return model.Actor{}, fmt.Errorf("access token carries no actor id")
	}

	actorType := claims.ActorType
	if actorType == "" {
		actorType = model.ActorTypeUser
	}

	return model.Actor{
		ID:         claims.UserID,
		Type:       actorType,
		AuthMethod: claims.AuthMethod,
		OrgID:      claims.OrgID,
	}, nil
}
