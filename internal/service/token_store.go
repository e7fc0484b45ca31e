package service

import (
	"context"
	"fmt"
	"time"

	"github.com/obadakatsha-ayatgroup/domecare-app/pkg/jwt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const tokenScanCount = 100

// TokenStore is the registry of issued JWT ids. A token whose id is missing
// from the store is treated as revoked.
type TokenStore interface {
	Save(ctx context.Context, tokenType jwt.TokenType, userID uuid.UUID, tokenID string, ttl time.Duration) error
	Exists(ctx context.Context, tokenType jwt.TokenType, userID uuid.UUID, tokenID string) (bool, error)
	Revoke(ctx context.Context, tokenType jwt.TokenType, userID uuid.UUID, tokenID string) error
	RevokeAll(ctx context.Context, userID uuid.UUID) error
}

type redisTokenStore struct {
	redisClient redis.UniversalClient
	log         *logrus.Logger
}

func NewTokenStore(redisClient redis.UniversalClient, log *logrus.Logger) TokenStore {
	return &redisTokenStore{
		redisClient: redisClient,
		log:         log,
	}
}

func tokenKey(tokenType jwt.TokenType, userID uuid.UUID, tokenID string) string {
	return fmt.Sprintf("%s_token:%s:%s", tokenType, userID.String(), tokenID)
}

func (s *redisTokenStore) Save(ctx context.Context, tokenType jwt.TokenType, userID uuid.UUID, tokenID string, ttl time.Duration) error {
	if err := s.redisClient.Set(ctx, tokenKey(tokenType, userID, tokenID), "valid", ttl).Err(); err != nil {
		s.log.Warnf("Failed to store %s token in Redis: %+v", tokenType, err)
		return fmt.Errorf("store %s token: %w", tokenType, err)
	}
	return nil
}

func (s *redisTokenStore) Exists(ctx context.Context, tokenType jwt.TokenType, userID uuid.UUID, tokenID string) (bool, error) {
	n, err := s.redisClient.Exists(ctx, tokenKey(tokenType, userID, tokenID)).Result()
	if err != nil {
		s.log.Warnf("Failed to check %s token in Redis: %+v", tokenType, err)
		return false, fmt.Errorf("check %s token: %w", tokenType, err)
	}
	return n > 0, nil
}

func (s *redisTokenStore) Revoke(ctx context.Context, tokenType jwt.TokenType, userID uuid.UUID, tokenID string) error {
	if err := s.redisClient.Del(ctx, tokenKey(tokenType, userID, tokenID)).Err(); err != nil {
		s.log.Warnf("Failed to revoke %s token: %+v", tokenType, err)
		return fmt.Errorf("revoke %s token: %w", tokenType, err)
	}
	return nil
}

// RevokeAll removes every access and refresh token of the user.
func (s *redisTokenStore) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	for _, tokenType := range []jwt.TokenType{jwt.AccessToken, jwt.RefreshToken} {
		pattern := tokenKey(tokenType, userID, "*")
		if err := deleteByPattern(ctx, s.redisClient, pattern); err != nil {
			s.log.Warnf("Failed to revoke %s tokens for user %s: %+v", tokenType, userID, err)
			return fmt.Errorf("revoke %s tokens: %w", tokenType, err)
		}
	}
	return nil
}

// deleteByPattern walks the keyspace with SCAN and deletes matching keys batch by batch.
func deleteByPattern(ctx context.Context, client redis.UniversalClient, pattern string) error {
	var cursor uint64
	for {
		keys, next, err := client.Scan(ctx, cursor, pattern, tokenScanCount).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
