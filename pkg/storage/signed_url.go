package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SignedURLSigner creates and validates expiring download tokens that name a
// lesson plan and one of its files.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSignedURLSigner constructs a signer with the provided secret and TTL.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SignedURLSigner{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Generate returns a signed token referencing the lesson and file ids.
func (s *SignedURLSigner) Generate(lessonID, fileID string) (string, time.Time, error) {
	if lessonID == "" || fileID == "" {
		return "", time.Time{}, fmt.Errorf("lessonID and fileID required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl)
	encLesson := base64.RawURLEncoding.EncodeToString([]byte(lessonID))
	encFile := base64.RawURLEncoding.EncodeToString([]byte(fileID))
	ts := strconv.FormatInt(expiresAt.Unix(), 10)
	token := strings.Join([]string{encLesson, encFile, ts, s.sign(encLesson, encFile, ts)}, ".")
	return token, expiresAt, nil
}

// Parse validates a token and returns the embedded ids.
func (s *SignedURLSigner) Parse(token string) (lessonID, fileID string, expiresAt time.Time, err error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return "", "", time.Time{}, fmt.Errorf("invalid token format")
	}
	encLesson, encFile, ts, signature := parts[0], parts[1], parts[2], parts[3]

	expected := s.sign(encLesson, encFile, ts)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return "", "", time.Time{}, fmt.Errorf("invalid token signature")
	}

	expUnix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("invalid timestamp")
	}
	expiresAt = time.Unix(expUnix, 0)
	if s.now().After(expiresAt) {
		return "", "", time.Time{}, fmt.Errorf("token expired")
	}

	rawLesson, err := base64.RawURLEncoding.DecodeString(encLesson)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("decode lesson id: %w", err)
	}
	rawFile, err := base64.RawURLEncoding.DecodeString(encFile)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("decode file id: %w", err)
	}
	return string(rawLesson), string(rawFile), expiresAt, nil
}

func (s *SignedURLSigner) sign(parts ...string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(mac.Sum(nil))
}
