package utils

import (
	"context"
	"crypto/rand"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	redis "github.com/redis/go-redis/v9"

	"github.com/saifurrahmanctg/micro-earn-server/config"
	"github.com/saifurrahmanctg/micro-earn-server/logger"
)

type contextKey string

const UserEmailKey = contextKey("userEmail")
const UserRoleKey = contextKey("userRole")
const RequestIDKey = contextKey("requestID")

// RedisClient is an optional shared Redis client used for token revocation.
// It stays nil when redis.addr is not configured; revocation is then a no-op.
var RedisClient *redis.Client

var jwtSettings struct {
	secret    string
	issuer    string
	audience  string
	expiryMin int
}

// SetupJWT stores the signing settings from config. Must run before any
// token is issued or validated.
func SetupJWT(cfg *config.Config) error {
	if cfg.JWT.Secret == "" {
		return errors.New("jwt secret is not configured")
	}
	jwtSettings.secret = cfg.JWT.Secret
	jwtSettings.issuer = cfg.JWT.Issuer
	jwtSettings.audience = cfg.JWT.Audience
	jwtSettings.expiryMin = cfg.JWT.ExpiryMin
	if jwtSettings.expiryMin <= 0 {
		jwtSettings.expiryMin = 60
	}
	return nil
}

// SetupRedis connects the optional revocation store. A ping failure is
// logged and the server continues without revocation support.
func SetupRedis(cfg *config.Config) {
	addr := strings.TrimSpace(cfg.Redis.Addr)
	if addr == "" {
		return
	}
	rc := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping failed, token revocation disabled: %v", err)
		_ = rc.Close()
		return
	}
	RedisClient = rc
}

// GenerateToken issues an HS256 access token for the given identity.
func GenerateToken(email, role string) (string, error) {
	if jwtSettings.secret == "" {
		return "", errors.New("jwt not configured")
	}
	jti, err := generateJTI(32)
	if err != nil {
		return "", err
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"email": email,
		"role":  role,
		"exp":   now.Add(time.Duration(jwtSettings.expiryMin) * time.Minute).Unix(),
		"iat":   now.Unix(),
		"nbf":   now.Unix(),
		"jti":   jti,
		"iss":   jwtSettings.issuer,
		"aud":   jwtSettings.audience,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSettings.secret))
}

// ValidateAccessToken parses the token, requires exact HS256, checks the
// registered claims and the revocation store, and returns the claims.
func ValidateAccessToken(tokenStr string) (jwt.MapClaims, error) {
	if jwtSettings.secret == "" {
		return nil, errors.New("jwt not configured")
	}
	token, err := jwt.ParseWithClaims(tokenStr, jwt.MapClaims{}, func(t *jwt.Token) (interface{}, error) {
		// Require exact HS256 algorithm to avoid algorithm confusion.
		if t.Method == nil || t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(jwtSettings.secret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}

	now := time.Now()
	if expRaw, ok := claims["exp"].(float64); ok {
		if now.Unix() > int64(expRaw) {
			return nil, errors.New("token expired")
		}
	}
	if nbfRaw, ok := claims["nbf"].(float64); ok {
		if now.Unix() < int64(nbfRaw) {
			return nil, errors.New("token not yet valid")
		}
	}
	if jwtSettings.issuer != "" {
		if iss, ok := claims["iss"].(string); !ok || iss != jwtSettings.issuer {
			return nil, errors.New("invalid issuer")
		}
	}
	if jwtSettings.audience != "" {
		if aud, ok := claims["aud"].(string); !ok || aud != jwtSettings.audience {
			return nil, errors.New("invalid audience")
		}
	}

	if jti, ok := claims["jti"].(string); ok && jti != "" && RedisClient != nil {
		ctx := context.Background()
		res, err := RedisClient.Get(ctx, "jwt:blacklist:"+jti).Result()
		if err == nil && res == "1" {
			return nil, errors.New("token revoked")
		}
		// redis errors are ignored so an outage does not lock everyone out
	}
	return claims, nil
}

// RevokeJTI blacklists a token id for its remaining lifetime.
func RevokeJTI(jti string, ttl time.Duration) error {
	if jti == "" {
		return errors.New("empty jti")
	}
	if RedisClient == nil {
		return errors.New("no revocation store configured")
	}
	return RedisClient.Set(context.Background(), "jwt:blacklist:"+jti, "1", ttl).Err()
}

// RevokeRequestToken blacklists the jti of the bearer token on the request
// for the token's remaining lifetime. Without a revocation store configured
// the token simply ages out and this is a no-op.
func RevokeRequestToken(r *http.Request) error {
	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		return errors.New("missing or invalid Authorization header")
	}
	claims, err := ValidateAccessToken(strings.TrimSpace(strings.TrimPrefix(authz, "Bearer ")))
	if err != nil {
		return err
	}
	if RedisClient == nil {
		return nil
	}
	jti, _ := claims["jti"].(string)
	ttl := time.Duration(jwtSettings.expiryMin) * time.Minute
	if expRaw, ok := claims["exp"].(float64); ok {
		if remaining := time.Until(time.Unix(int64(expRaw), 0)); remaining > 0 {
			ttl = remaining
		}
	}
	return RevokeJTI(jti, ttl)
}

// ExtractIdentity pulls email and role from the Authorization header.
func ExtractIdentity(r *http.Request) (email, role string, err error) {
	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		return "", "", errors.New("missing or invalid Authorization header")
	}
	tokenStr := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	claims, err := ValidateAccessToken(tokenStr)
	if err != nil {
		return "", "", err
	}
	email, _ = claims["email"].(string)
	role, _ = claims["role"].(string)
	if email == "" {
		return "", "", errors.New("invalid token payload")
	}
	return email, role, nil
}

// GetUserEmail reads the authenticated email injected by the auth middleware.
func GetUserEmail(r *http.Request) (string, bool) {
	v := r.Context().Value(UserEmailKey)
	email, ok := v.(string)
	return email, ok
}

// GetUserRole reads the token role injected by the auth middleware. Controllers
// that gate on role should prefer the DB-backed role guards.
func GetUserRole(r *http.Request) (string, bool) {
	v := r.Context().Value(UserRoleKey)
	role, ok := v.(string)
	return role, ok
}

// generateJTI creates a URL-safe random identifier used as JWT ID
func generateJTI(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	const hex = "0123456789abcdef"
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = hex[int(b[i])%len(hex)]
	}
	return string(out), nil
}
