package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"

	"stayhub/internal/metrics"
	"stayhub/internal/session"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// --- DTOs ---

type SendOTPRequest struct {
	Phone string `json:"phone" binding:"required"`
}

type VerifyOTPRequest struct {
	Phone string `json:"phone" binding:"required"`
	Code  string `json:"code" binding:"required,len=6,numeric"`
}

type SendOTPResponse struct {
	Phone     string `json:"phone"`
	ExpiresIn int    `json:"expires_in"`
	MessageID string `json:"message_id,omitempty"`
}

type VerifyOTPResponse struct {
	Phone    string `json:"phone"`
	Verified bool   `json:"verified"`
}

// SMSSender delivers a text message and returns the gateway's message id.
type SMSSender interface {
	Send(ctx context.Context, to, body string) (string, error)
}

// PhoneVerifier records a verified phone number on the caller's profile.
type PhoneVerifier interface {
	MarkPhoneVerified(ctx context.Context, sess *session.Session, phone string) error
}

type OTPOptions struct {
	TTL         time.Duration
	Cooldown    time.Duration
	MaxAttempts int
}

// --- Interface ---

type OTPService interface {
	Send(ctx context.Context, sess *session.Session, req SendOTPRequest) (SendOTPResponse, error)
	Verify(ctx context.Context, sess *session.Session, req VerifyOTPRequest) (VerifyOTPResponse, error)
}

// --- Implementation ---

var phoneRegex = regexp.MustCompile(`^\+[1-9][0-9]{6,14}$`)

type otpService struct {
	rdb      *redis.Client
	sms      SMSSender
	verifier PhoneVerifier
	opts     OTPOptions
	log      zerolog.Logger
}

func NewOTPService(rdb *redis.Client, sms SMSSender, verifier PhoneVerifier, opts OTPOptions, log zerolog.Logger) OTPService {
	if opts.TTL <= 0 {
		opts.TTL = 5 * time.Minute
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = time.Minute
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	return &otpService{rdb: rdb, sms: sms, verifier: verifier, opts: opts, log: log}
}

// Send issues a fresh 6-digit code. Only its bcrypt hash is stored, under a TTL.
func (s *otpService) Send(ctx context.Context, sess *session.Session, req SendOTPRequest) (SendOTPResponse, error) {
	if s.rdb == nil {
		return SendOTPResponse{}, fmt.Errorf("otp store %w", ErrUnavailable)
	}
	phone := normalizePhone(req.Phone)
	if !phoneRegex.MatchString(phone) {
		return SendOTPResponse{}, invalid("phone must be in international format, e.g. +84901234567")
	}

	cooldownKey := otpCooldownKey(phone)
	ok, err := s.rdb.SetNX(ctx, cooldownKey, "1", s.opts.Cooldown).Result()
	if err != nil {
		return SendOTPResponse{}, fmt.Errorf("failed to reserve otp send: %w", err)
	}
	if !ok {
		metrics.OTPSent.WithLabelValues("cooldown").Inc()
		return SendOTPResponse{}, fmt.Errorf("%w: wait before requesting another code", ErrRateLimited)
	}

	code, err := generateOTP()
	if err != nil {
		return SendOTPResponse{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return SendOTPResponse{}, errors.New("failed to hash otp")
	}

	codeKey := otpCodeKey(sess, phone)
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, codeKey)
		pipe.HSet(ctx, codeKey, "hash", string(hash), "attempts", 0)
		pipe.Expire(ctx, codeKey, s.opts.TTL)
		return nil
	})
	if err != nil {
		s.rdb.Del(ctx, cooldownKey)
		return SendOTPResponse{}, fmt.Errorf("failed to store otp: %w", err)
	}

	body := fmt.Sprintf("Your StayHub verification code is %s. It expires in %d minutes.", code, int(s.opts.TTL.Minutes()))
	msgID, err := s.sms.Send(ctx, phone, body)
	if err != nil {
		s.rdb.Del(ctx, codeKey, cooldownKey)
		metrics.OTPSent.WithLabelValues("failed").Inc()
		s.log.Warn().Err(err).Str("user_id", sess.UserID.String()).Msg("failed to send otp sms")
		return SendOTPResponse{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	metrics.OTPSent.WithLabelValues("sent").Inc()
	return SendOTPResponse{Phone: phone, ExpiresIn: int(s.opts.TTL.Seconds()), MessageID: msgID}, nil
}

// Verify checks code against the stored hash. The code is burnt after MaxAttempts failures
// and on success.
func (s *otpService) Verify(ctx context.Context, sess *session.Session, req VerifyOTPRequest) (VerifyOTPResponse, error) {
	if s.rdb == nil {
		return VerifyOTPResponse{}, fmt.Errorf("otp store %w", ErrUnavailable)
	}
	phone := normalizePhone(req.Phone)
	codeKey := otpCodeKey(sess, phone)

	stored, err := s.rdb.HGetAll(ctx, codeKey).Result()
	if err != nil {
		return VerifyOTPResponse{}, fmt.Errorf("failed to load otp: %w", err)
	}
	hash := stored["hash"]
	if hash == "" {
		return VerifyOTPResponse{}, invalid("code expired or was never requested")
	}

	attempts, err := s.rdb.HIncrBy(ctx, codeKey, "attempts", 1).Result()
	if err != nil {
		return VerifyOTPResponse{}, fmt.Errorf("failed to record otp attempt: %w", err)
	}
	if attempts > int64(s.opts.MaxAttempts) {
		s.rdb.Del(ctx, codeKey)
		return VerifyOTPResponse{}, invalid("too many attempts, request a new code")
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Code)) != nil {
		left := int64(s.opts.MaxAttempts) - attempts
		if left <= 0 {
			s.rdb.Del(ctx, codeKey)
			return VerifyOTPResponse{}, invalid("invalid code, request a new code")
		}
		return VerifyOTPResponse{}, invalid("invalid code, %s attempts left", strconv.FormatInt(left, 10))
	}

	s.rdb.Del(ctx, codeKey)
	if s.verifier != nil {
		if err := s.verifier.MarkPhoneVerified(ctx, sess, phone); err != nil {
			return VerifyOTPResponse{}, err
		}
	}
	return VerifyOTPResponse{Phone: phone, Verified: true}, nil
}

// --- Helpers ---

func otpCodeKey(sess *session.Session, phone string) string {
	return "otp:code:" + sess.UserID.String() + ":" + phone
}

func otpCooldownKey(phone string) string {
	return "otp:cooldown:" + phone
}

func normalizePhone(phone string) string {
	r := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")
	return r.Replace(strings.TrimSpace(phone))
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
