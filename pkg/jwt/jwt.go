package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"fleetwave/backend/config"
)

var (
	ErrTokenExpired = errors.New("token 已过期")
	ErrTokenInvalid = errors.New("token 无效")
)

// 角色
const (
	RoleAdmin  = "admin"
	RoleDriver = "driver"
)

// Claims 自定义 JWT 声明
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"` // admin | driver
	// DriverID 司机账号对应的 drivers.driver_id；管理员为空
	DriverID string `json:"driver_id,omitempty"`
	jwtv5.RegisteredClaims
}

// Manager JWT 管理器
// Token 正常由托管认证服务签发；Generate 仅用于运维脚本与测试
type Manager struct {
	secret         []byte
	issuer         string
	accessTokenTTL time.Duration
}

// NewManager 创建 JWT 管理器
func NewManager(cfg *config.AuthConfig) *Manager {
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = "fleetwave"
	}
	return &Manager{
		secret:         []byte(cfg.JWTSecret),
		issuer:         issuer,
		accessTokenTTL: cfg.AccessTokenTTL,
	}
}

// GenerateAccessToken 生成 Access Token
func (m *Manager) GenerateAccessToken(userID, role, driverID string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   userID,
		Role:     role,
		DriverID: driverID,
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(m.accessTokenTTL)),
			Issuer:    m.issuer,
		},
	}

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ParseToken 解析并验证 Token（签名、过期、签发方）
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwtv5.ParseWithClaims(tokenString, &Claims{}, func(t *jwtv5.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.secret, nil
	}, jwtv5.WithIssuer(m.issuer))

	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
