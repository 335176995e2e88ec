package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"skinTrack/domain"

	"github.com/redis/go-redis/v9"
)

type TokenRepository struct {
	client *redis.Client
}

func NewTokenRepository(client *redis.Client) *TokenRepository {
	return &TokenRepository{
		client: client,
	}
}

func userTokenKey(userID string) string {
	return fmt.Sprintf("token:user:%s", userID)
}

func tokenLookupKey(token string) string {
	return fmt.Sprintf("token:lookup:%s", token)
}

// StoreToken records the latest token for a user plus a reverse lookup from
// token to user id. Both keys expire with the token.
func (r *TokenRepository) StoreToken(ctx context.Context, userID, token string, data domain.TokenData, ttl time.Duration) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal token data: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, userTokenKey(userID), jsonData, ttl)
	pipe.Set(ctx, tokenLookupKey(token), userID, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store token in Redis: %w", err)
	}

	return nil
}

func (r *TokenRepository) GetTokenData(ctx context.Context, userID string) (*domain.TokenData, error) {
	val, err := r.client.Get(ctx, userTokenKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get token from Redis: %w", err)
	}

	var tokenData domain.TokenData
	if err := json.Unmarshal([]byte(val), &tokenData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token data: %w", err)
	}

	return &tokenData, nil
}

// ValidateToken returns the user id a live token belongs to.
func (r *TokenRepository) ValidateToken(ctx context.Context, token string) (string, error) {
	userID, err := r.client.Get(ctx, tokenLookupKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrTokenNotFound
		}
		return "", fmt.Errorf("failed to validate token: %w", err)
	}

	return userID, nil
}

func (r *TokenRepository) RevokeToken(ctx context.Context, userID, token string) error {
	if err := r.client.Del(ctx, userTokenKey(userID), tokenLookupKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	return nil
}
