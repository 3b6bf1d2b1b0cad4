package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"chorus/social-service/models"
	"chorus/social-service/utils"
)

const (
	presenceKeyPrefix = "presence:"
	onlineSetKey      = "online_users"

	statusOnline  = "online"
	statusOffline = "offline"
)

// PresenceMirror publishes local presence changes to a shared store so other
// instances can see who is online. It does not route pushes.
type PresenceMirror interface {
	MarkOnline(ctx context.Context, userID string) error
	MarkOffline(ctx context.Context, userIDs ...string) error
	Refresh(ctx context.Context, userIDs []string) error
}

// RedisPresence keeps one presence key per user plus a set of online ids.
// Keys expire after ttl unless refreshed.
type RedisPresence struct {
	redis      *redis.Client
	logger     *utils.Logger
	ttl        time.Duration
	instanceID string
	now        func() time.Time
}

func NewRedisPresence(redisClient *redis.Client, ttl time.Duration, instanceID string, logger *utils.Logger) *RedisPresence {
	return &RedisPresence{
		redis:      redisClient,
		logger:     logger.With("component", "RedisPresence"),
		ttl:        ttl,
		instanceID: instanceID,
		now:        time.Now,
	}
}

// TTL is how long a presence entry survives without a refresh.
func (rp *RedisPresence) TTL() time.Duration {
	return rp.ttl
}

func (rp *RedisPresence) MarkOnline(ctx context.Context, userID string) error {
	return rp.Refresh(ctx, []string{userID})
}

// Refresh rewrites the presence entries for userIDs with a fresh TTL.
func (rp *RedisPresence) Refresh(ctx context.Context, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}

	pipe := rp.redis.Pipeline()
	for _, userID := range userIDs {
		presence := models.UserPresence{
			UserID:     userID,
			Status:     statusOnline,
			LastSeen:   rp.now(),
			InstanceID: rp.instanceID,
		}
		data, err := json.Marshal(presence)
		if err != nil {
			return fmt.Errorf("failed to marshal presence data: %w", err)
		}
		pipe.Set(ctx, presenceKeyPrefix+userID, data, rp.ttl)
		pipe.SAdd(ctx, onlineSetKey, userID)
	}
	// Keep online set alive longer
	pipe.Expire(ctx, onlineSetKey, rp.ttl*2)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to update presence: %w", err)
	}

	rp.logger.Debug("Refreshed presence", "users", len(userIDs))
	return nil
}

// markOfflineScript deletes the presence key only when it is untagged or
// tagged with this instance, so a reconnect on another instance survives.
// KEYS[1] presence key, KEYS[2] online set, ARGV[1] owner tag, ARGV[2] user id.
const markOfflineScript = `
local v = redis.call('GET', KEYS[1])
if v then
	local tagged = string.find(v, '"instance_id":', 1, true)
	local owned = string.find(v, ARGV[1], 1, true)
	if tagged and not owned then
		return 0
	end
	redis.call('DEL', KEYS[1])
end
redis.call('SREM', KEYS[2], ARGV[2])
return 1
`

// MarkOffline removes the users' presence entries in one round trip. Entries
// owned by another instance are left alone.
func (rp *RedisPresence) MarkOffline(ctx context.Context, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}

	owner := fmt.Sprintf(`"instance_id":%q`, rp.instanceID)
	pipe := rp.redis.Pipeline()
	for _, userID := range userIDs {
		pipe.Eval(ctx, markOfflineScript, []string{presenceKeyPrefix + userID, onlineSetKey}, owner, userID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to remove presence: %w", err)
	}

	rp.logger.Debug("Removed presence", "users", len(userIDs))
	return nil
}

// GetPresence returns the stored record, or an offline record when absent.
func (rp *RedisPresence) GetPresence(ctx context.Context, userID string) (*models.UserPresence, error) {
	data, err := rp.redis.Get(ctx, presenceKeyPrefix+userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return &models.UserPresence{UserID: userID, Status: statusOffline}, nil
		}
		return nil, fmt.Errorf("failed to get presence: %w", err)
	}

	var presence models.UserPresence
	if err := json.Unmarshal([]byte(data), &presence); err != nil {
		return nil, fmt.Errorf("failed to unmarshal presence data: %w", err)
	}

	if rp.now().Sub(presence.LastSeen) > rp.ttl {
		presence.Status = statusOffline
	}

	return &presence, nil
}

// IsOnline reports whether any instance holds a fresh entry for userID.
func (rp *RedisPresence) IsOnline(ctx context.Context, userID string) (bool, error) {
	presence, err := rp.GetPresence(ctx, userID)
	if err != nil {
		return false, err
	}
	return presence.Status == statusOnline, nil
}

// GetOnlineUsers lists all fresh entries and prunes stale ids from the set.
func (rp *RedisPresence) GetOnlineUsers(ctx context.Context) ([]models.UserPresence, error) {
	userIDs, err := rp.redis.SMembers(ctx, onlineSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get online users: %w", err)
	}

	if len(userIDs) == 0 {
		return []models.UserPresence{}, nil
	}

	pipe := rp.redis.Pipeline()
	cmds := make([]*redis.StringCmd, len(userIDs))
	for i, userID := range userIDs {
		cmds[i] = pipe.Get(ctx, presenceKeyPrefix+userID)
	}

	_, err = pipe.Exec(ctx)
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to get presence data: %w", err)
	}

	onlineUsers := make([]models.UserPresence, 0, len(userIDs))
	var expired []any

	for i, cmd := range cmds {
		data, err := cmd.Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				rp.logger.Warn("Error getting presence", "user_id", userIDs[i], "error", err)
			}
			expired = append(expired, userIDs[i])
			continue
		}

		var presence models.UserPresence
		if err := json.Unmarshal([]byte(data), &presence); err != nil {
			rp.logger.Warn("Error unmarshaling presence", "user_id", userIDs[i], "error", err)
			continue
		}

		if rp.now().Sub(presence.LastSeen) <= rp.ttl {
			onlineUsers = append(onlineUsers, presence)
		} else {
			expired = append(expired, userIDs[i])
		}
	}

	if len(expired) > 0 {
		if err := rp.redis.SRem(ctx, onlineSetKey, expired...).Err(); err != nil {
			rp.logger.Warn("Failed to prune online set", "error", err)
		}
	}

	return onlineUsers, nil
}
