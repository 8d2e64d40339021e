package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"stayhub/internal/integration/beds24"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// --- DTOs ---

// Beds24TokenRequest carries either an invite code or a refresh token.
type Beds24TokenRequest struct {
	Code         string `json:"code"`
	RefreshToken string `json:"refresh_token"`
}

type Beds24TokenResponse struct {
	Token        string `json:"token"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Cached       bool   `json:"cached"`
}

// Beds24Client is the subset of the Beds24 API used for token exchange.
type Beds24Client interface {
	Setup(ctx context.Context, code string) (*beds24.SetupResult, error)
	Token(ctx context.Context, refreshToken string) (*beds24.TokenResult, error)
}

// --- Interface ---

type ChannelService interface {
	ExchangeBeds24Token(ctx context.Context, req Beds24TokenRequest) (Beds24TokenResponse, error)
}

// --- Implementation ---

// tokenSafetyMargin is subtracted from expiresIn so a cached token is never served stale.
const tokenSafetyMargin = 60 * time.Second

type channelService struct {
	client Beds24Client
	rdb    *redis.Client
	log    zerolog.Logger
}

// NewChannelService builds the Beds24 token exchange. rdb may be nil, which disables caching.
func NewChannelService(client Beds24Client, rdb *redis.Client, log zerolog.Logger) ChannelService {
	return &channelService{client: client, rdb: rdb, log: log}
}

func (s *channelService) ExchangeBeds24Token(ctx context.Context, req Beds24TokenRequest) (Beds24TokenResponse, error) {
	switch {
	case req.Code != "" && req.RefreshToken != "":
		return Beds24TokenResponse{}, invalid("provide either code or refresh_token, not both")
	case req.Code != "":
		res, err := s.client.Setup(ctx, req.Code)
		if err != nil {
			return Beds24TokenResponse{}, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		s.cache(ctx, res.RefreshToken, res.Token, res.ExpiresIn)
		return Beds24TokenResponse{Token: res.Token, ExpiresIn: res.ExpiresIn, RefreshToken: res.RefreshToken}, nil
	case req.RefreshToken != "":
		if token, ttl, ok := s.cached(ctx, req.RefreshToken); ok {
			return Beds24TokenResponse{Token: token, ExpiresIn: int(ttl.Seconds()), Cached: true}, nil
		}
		res, err := s.client.Token(ctx, req.RefreshToken)
		if err != nil {
			return Beds24TokenResponse{}, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		s.cache(ctx, req.RefreshToken, res.Token, res.ExpiresIn)
		return Beds24TokenResponse{Token: res.Token, ExpiresIn: res.ExpiresIn}, nil
	default:
		return Beds24TokenResponse{}, invalid("code or refresh_token is required")
	}
}

// --- Helpers ---

func beds24CacheKey(refreshToken string) string {
	sum := sha256.Sum256([]byte(refreshToken))
	return "beds24:token:" + hex.EncodeToString(sum[:])
}

func (s *channelService) cached(ctx context.Context, refreshToken string) (string, time.Duration, bool) {
	if s.rdb == nil {
		return "", 0, false
	}
	key := beds24CacheKey(refreshToken)
	token, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Msg("beds24 token cache read failed")
		}
		return "", 0, false
	}
	ttl, err := s.rdb.TTL(ctx, key).Result()
	if err != nil || ttl <= 0 {
		return "", 0, false
	}
	return token, ttl, true
}

func (s *channelService) cache(ctx context.Context, refreshToken, token string, expiresIn int) {
	if s.rdb == nil || refreshToken == "" || token == "" {
		return
	}
	ttl := time.Duration(expiresIn)*time.Second - tokenSafetyMargin
	if ttl <= 0 {
		return
	}
	if err := s.rdb.Set(ctx, beds24CacheKey(refreshToken), token, ttl).Err(); err != nil {
		s.log.Warn().Err(err).Msg("beds24 token cache write failed")
	}
}
