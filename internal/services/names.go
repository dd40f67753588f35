package services

import (
	"context"
	"log"
	"time"

	"github.com/caps-platform/scheduling-backend/internal/database"
	"github.com/caps-platform/scheduling-backend/internal/scheduling"
)

const (
	// NameCacheKeyPrefix is the Redis key prefix for cached display names
	NameCacheKeyPrefix = "user_name:"
	// NameCacheTTL: display names change rarely
	NameCacheTTL = 8 * time.Hour

	// Placeholders used when a name cannot be resolved. Enrichment is
	// best-effort and must never fail the request it decorates.
	AnyTherapistName       = "Any Available Therapist"
	PreferredTherapistName = "Preferred Therapist"
)

// cachedName reads a display name from Redis. Returns "" when the cache is
// unavailable or has no entry; resolution falls through to the store.
func cachedName(ctx context.Context, key string) string {
	if database.RedisClient == nil {
		return ""
	}
	name, err := database.RedisClient.Get(ctx, key).Result()
	if err != nil {
		return ""
	}
	return name
}

func cacheName(ctx context.Context, key, name string) {
	if database.RedisClient == nil {
		return
	}
	if err := database.RedisClient.Set(ctx, key, name, NameCacheTTL).Err(); err != nil {
		log.Printf("name cache write failed for %s: %v", key, err)
	}
}

// TherapistDisplayName resolves a therapist ID to a display name for waitlist
// projections: Redis cache first, then the collaborator's users collection,
// then a placeholder.
func TherapistDisplayName(ctx context.Context, store scheduling.Store, therapistID string) string {
	if therapistID == "" {
		return AnyTherapistName
	}

	cacheKey := NameCacheKeyPrefix + therapistID
	if name := cachedName(ctx, cacheKey); name != "" {
		return name
	}

	user, err := store.UserByID(ctx, therapistID)
	if err != nil || user == nil || user.Name == "" {
		if err != nil {
			log.Printf("name lookup failed for %s: %v", therapistID, err)
		}
		return PreferredTherapistName
	}

	cacheName(ctx, cacheKey, user.Name)
	return user.Name
}

// UserDisplayName resolves any platform user's name with the same cache,
// falling back to the given default. Used when admins act on behalf of a
// student or therapist.
func UserDisplayName(ctx context.Context, store scheduling.Store, userID, fallback string) string {
	if userID == "" {
		return fallback
	}

	cacheKey := NameCacheKeyPrefix + userID
	if name := cachedName(ctx, cacheKey); name != "" {
		return name
	}

	user, err := store.UserByID(ctx, userID)
	if err != nil || user == nil || user.Name == "" {
		return fallback
	}

	cacheName(ctx, cacheKey, user.Name)
	return user.Name
}
