package auth

import (
	"errors"
	"time"

	"uat-portal-api/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

var (
	jwtSecret   = []byte("development-insecure-secret-change-me")
	jwtIssuer   = "uat-portal-api"
	jwtAudience = "uat-portal-clients"
)

// Configure sets the signing parameters; call once at startup.
func Configure(secret, issuer, audience string) {
	jwtSecret = []byte(secret)
	jwtIssuer = issuer
	jwtAudience = audience
}

// Claims represents the JWT claims
type Claims struct {
	UserID   string      `json:"user_id"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	Country  string      `json:"country,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken generates a JWT token for the given user
func GenerateToken(user *models.User) (string, error) {
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		Country:  user.Country,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    jwtIssuer,
			Audience:  jwt.ClaimStrings{jwtAudience},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// ValidateToken validates a JWT token and returns the claims
func ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		if claims.Issuer != jwtIssuer {
			return nil, errors.New("invalid token issuer")
		}
		audValid := false
		for _, aud := range claims.Audience {
			if aud == jwtAudience {
				audValid = true
				break
			}
		}
		if !audValid {
			return nil, errors.New("invalid token audience")
		}
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
