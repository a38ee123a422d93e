package jwt

import (
	"testing"
	"time"

	"fleetwave/backend/config"
)

func newTestManager() *Manager {
	return NewManager(&config.AuthConfig{
		JWTSecret:      "test-secret-key-for-unit-testing-2026",
		AccessTokenTTL: 15 * time.Minute,
	})
}

func TestGenerateAndParseAccessToken_Driver(t *testing.T) {
	m := newTestManager()

	token, err := m.GenerateAccessToken("user-1", RoleDriver, "drv-1")
	if err != nil {
		t.Fatalf("GenerateAccessToken 失败: %v", err)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken 失败: %v", err)
	}

	if claims.UserID != "user-1" {
		t.Errorf("期望 UserID=user-1，实际=%s", claims.UserID)
	}
	if claims.Role != RoleDriver {
		t.Errorf("期望 Role=driver，实际=%s", claims.Role)
	}
	if claims.DriverID != "drv-1" {
		t.Errorf("期望 DriverID=drv-1，实际=%s", claims.DriverID)
	}
	if claims.Issuer != "fleetwave" {
		t.Errorf("期望 Issuer=fleetwave，实际=%s", claims.Issuer)
	}
	if claims.ID == "" {
		t.Error("JTI 不应为空")
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl < 14*time.Minute || ttl > 16*time.Minute {
		t.Errorf("有效期期望约15分钟，实际=%v", ttl)
	}
}

func TestParseToken_InvalidToken(t *testing.T) {
	m := newTestManager()

	_, err := m.ParseToken("invalid.token.string")
	if err != ErrTokenInvalid {
		t.Errorf("期望 ErrTokenInvalid，实际: %v", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	m1 := newTestManager()
	m2 := NewManager(&config.AuthConfig{
		JWTSecret:      "different-secret-key",
		AccessTokenTTL: 15 * time.Minute,
	})

	token, _ := m1.GenerateAccessToken("user-1", RoleAdmin, "")
	if _, err := m2.ParseToken(token); err == nil {
		t.Error("不同密钥签名的 token 不应通过验证")
	}
}

func TestParseToken_WrongIssuer(t *testing.T) {
	other := NewManager(&config.AuthConfig{
		JWTSecret:      "test-secret-key-for-unit-testing-2026",
		Issuer:         "someone-else",
		AccessTokenTTL: 15 * time.Minute,
	})

	token, _ := other.GenerateAccessToken("user-1", RoleAdmin, "")
	if _, err := newTestManager().ParseToken(token); err == nil {
		t.Error("签发方不符的 token 不应通过验证")
	}
}

func TestParseToken_ExpiredToken(t *testing.T) {
	m := NewManager(&config.AuthConfig{
		JWTSecret:      "test-secret",
		AccessTokenTTL: 1 * time.Millisecond,
	})

	token, _ := m.GenerateAccessToken("user-1", RoleAdmin, "")
	time.Sleep(1100 * time.Millisecond)

	_, err := m.ParseToken(token)
	if err != ErrTokenExpired {
		t.Errorf("期望 ErrTokenExpired，实际: %v", err)
	}
}
