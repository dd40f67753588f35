package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/caps-platform/scheduling-backend/internal/database"
	"github.com/caps-platform/scheduling-backend/internal/scheduling"
)

const (
	// SessionDuration is 7 days
	SessionDuration = 7 * 24 * time.Hour
	// SessionKeyPrefix is the Redis key prefix for actor sessions
	SessionKeyPrefix = "actor_session:"
)

// sessionRecord is what the auth collaborator mints for an authenticated
// platform user. The scheduler never handles credentials; it only resolves
// tokens back to actors.
type sessionRecord struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

// CreateActorSession stores an actor session in Redis and returns its token.
func CreateActorSession(userID, name, role string) (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := base64.URLEncoding.EncodeToString(tokenBytes)

	payload, err := json.Marshal(sessionRecord{UserID: userID, Name: name, Role: role})
	if err != nil {
		return "", err
	}

	ctx := context.Background()
	if err := database.RedisClient.Set(ctx, SessionKeyPrefix+token, payload, SessionDuration).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// ResolveActor looks a session token up and returns the actor it belongs to.
// ok is false for empty, unknown, or expired tokens.
func ResolveActor(token string) (scheduling.Actor, bool) {
	if token == "" {
		return scheduling.Actor{}, false
	}

	ctx := context.Background()
	val, err := database.RedisClient.Get(ctx, SessionKeyPrefix+token).Result()
	if err != nil {
		return scheduling.Actor{}, false
	}

	var rec sessionRecord
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return scheduling.Actor{}, false
	}
	if !scheduling.ValidRole(rec.Role) {
		return scheduling.Actor{}, false
	}

	return scheduling.Actor{ID: rec.UserID, Name: rec.Name, Role: scheduling.Role(rec.Role)}, true
}

// InvalidateActorSession removes a session from Redis.
func InvalidateActorSession(token string) error {
	if token == "" {
		return nil
	}
	return database.RedisClient.Del(context.Background(), SessionKeyPrefix+token).Err()
}
