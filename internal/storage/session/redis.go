package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	domainErrors "github.com/polkiloo/routeshop/internal/domain/errors"
	"github.com/polkiloo/routeshop/internal/domain/model"
)

// expiryGrace keeps a draft readable a little past its deadline so the
// expiry scheduler, not the key TTL, decides when it ends.
const expiryGrace = time.Minute

const keyPrefix = "routeshop"

var closeDraftScript = redis.NewScript(`
if redis.call("HGET", KEYS[1], "id") == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisStore keeps sessions in Redis so they survive restarts.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps a connected Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func draftKey(buyerID int64) string {
	return keyPrefix + ":draft:" + strconv.FormatInt(buyerID, 10)
}

func referralKey(buyerID int64) string {
	return keyPrefix + ":referral:" + strconv.FormatInt(buyerID, 10)
}

func rejectionKey(operatorID int64) string {
	return keyPrefix + ":rejection:" + strconv.FormatInt(operatorID, 10)
}

func noticeKey(key string) string {
	return keyPrefix + ":notice:" + key
}

func (s *RedisStore) OpenDraft(ctx context.Context, draft model.Draft, ttl time.Duration) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}

	key := draftKey(draft.BuyerID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, "id", draft.ID, "payload", payload)
		pipe.Expire(ctx, key, ttl+expiryGrace)
		return nil
	})
	if err != nil {
		return fmt.Errorf("open draft: %w", err)
	}
	return nil
}

func (s *RedisStore) Draft(ctx context.Context, buyerID int64) (*model.Draft, error) {
	payload, err := s.client.HGet(ctx, draftKey(buyerID), "payload").Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domainErrors.ErrNoDraft
		}
		return nil, fmt.Errorf("load draft: %w", err)
	}

	var d model.Draft
	if err := json.Unmarshal(payload, &d); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	return &d, nil
}

func (s *RedisStore) CloseDraft(ctx context.Context, buyerID int64, draftID string) (bool, error) {
	deleted, err := closeDraftScript.Run(ctx, s.client, []string{draftKey(buyerID)}, draftID).Int()
	if err != nil {
		return false, fmt.Errorf("close draft: %w", err)
	}
	return deleted > 0, nil
}

func (s *RedisStore) RememberReferral(ctx context.Context, buyerID int64, code string, ttl time.Duration) error {
	return s.client.Set(ctx, referralKey(buyerID), code, ttl).Err()
}

func (s *RedisStore) Referral(ctx context.Context, buyerID int64) (string, error) {
	code, err := s.client.Get(ctx, referralKey(buyerID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return code, err
}

func (s *RedisStore) SaveRejection(ctx context.Context, operatorID int64, rc model.RejectContext, ttl time.Duration) error {
	payload, err := json.Marshal(rc)
	if err != nil {
		return fmt.Errorf("encode rejection: %w", err)
	}
	return s.client.Set(ctx, rejectionKey(operatorID), payload, ttl).Err()
}

func (s *RedisStore) Rejection(ctx context.Context, operatorID int64) (*model.RejectContext, error) {
	payload, err := s.client.Get(ctx, rejectionKey(operatorID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, fmt.Errorf("load rejection: %w", err)
	}

	var rc model.RejectContext
	if err := json.Unmarshal(payload, &rc); err != nil {
		return nil, fmt.Errorf("decode rejection: %w", err)
	}
	return &rc, nil
}

func (s *RedisStore) ClearRejection(ctx context.Context, operatorID int64) error {
	return s.client.Del(ctx, rejectionKey(operatorID)).Err()
}

func (s *RedisStore) MarkNotice(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	marked, err := s.client.SetNX(ctx, noticeKey(key), 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("mark notice: %w", err)
	}
	return marked, nil
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
