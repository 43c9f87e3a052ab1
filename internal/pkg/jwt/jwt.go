package jwt

import (
	"errors"
	"time"

	"mikvah-scheduler/internal/domain/user"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Claims are the identity provider's access-token claims. The subject is the user id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Principal is the authenticated identity carried by a valid token.
type Principal struct {
	UserID uuid.UUID
	Role   user.Role
}

// Service validates HS256 tokens signed with the secret shared with the
// identity provider. GenerateToken exists for local tooling and tests.
type Service struct {
	secretKey     []byte
	tokenDuration time.Duration
	parser        *jwt.Parser
}

func NewService(secretKey string, tokenDuration time.Duration) *Service {
	return &Service{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
		parser:        jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()),
	}
}

func (s *Service) GenerateToken(userID uuid.UUID, role user.Role) (string, error) {
	return s.sign(userID, role, time.Now(), s.tokenDuration)
}

// GenerateTokenAt issues a token valid for d from issuedAt; a negative d yields an expired token.
func (s *Service) GenerateTokenAt(userID uuid.UUID, role user.Role, issuedAt time.Time, d time.Duration) (string, error) {
	return s.sign(userID, role, issuedAt, d)
}

func (s *Service) sign(userID uuid.UUID, role user.Role, issuedAt time.Time, d time.Duration) (string, error) {
	claims := Claims{
		Role: role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(d)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

func (s *Service) ValidateToken(tokenString string) (*Principal, error) {
	token, err := s.parser.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (any, error) {
		return s.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}
	role, err := user.NewRole(claims.Role)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &Principal{UserID: userID, Role: role}, nil
}
