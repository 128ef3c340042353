package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// 1. Variável global privada que guardará a instância única
var singleton *TokenGenerator

var ErrInvalidToken = errors.New("invalid access token")

type AccessTokenClaims struct {
	Tier  string `json:"tier"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type TokenGenerator struct {
	accessSecretKey []byte
	issuer          string
	accessExpiry    time.Duration
	now             func() time.Time
}

type Config struct {
	AccessSecret string
	Issuer       string
	AccessExpiry time.Duration
}

// NewTokenGenerator valida a configuração e cria um gerador isolado.
func NewTokenGenerator(cfg Config) (*TokenGenerator, error) {
	if cfg.AccessSecret == "" {
		return nil, fmt.Errorf("segredo JWT não pode estar vazio")
	}
	if cfg.Issuer == "" {
		return nil, fmt.Errorf("emissor (issuer) JWT não pode estar vazio")
	}
	if cfg.AccessExpiry <= 0 {
		return nil, fmt.Errorf("expiração do token deve ser positiva")
	}

	return &TokenGenerator{
		accessSecretKey: []byte(cfg.AccessSecret),
		issuer:          cfg.Issuer,
		accessExpiry:    cfg.AccessExpiry,
		now:             time.Now,
	}, nil
}

// 2. Função Init: Inicializa o Singleton (chame isso apenas uma vez, no main)
func Init(cfg Config) error {
	tg, err := NewTokenGenerator(cfg)
	if err != nil {
		return err
	}
	singleton = tg
	return nil
}

// 3. Função Use: Retorna a instância global para ser usada em qualquer lugar
func Use() *TokenGenerator {
	if singleton == nil {
		panic("JWT package não foi inicializado. Chame jwt.Init(cfg) no startup da aplicação.")
	}
	return singleton
}

func (tg *TokenGenerator) GenerateAccessToken(userID uuid.UUID, email, tier string) (string, time.Time, error) {
	issuedAt := tg.now().UTC()
	expirationTime := issuedAt.Add(tg.accessExpiry)

	claims := &AccessTokenClaims{
		Tier:  tier,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			Issuer:    tg.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tg.accessSecretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("erro ao assinar o access token: %w", err)
	}

	return tokenString, expirationTime, nil
}

// ParseAccessToken valida assinatura, emissor e expiração. Qualquer falha é
// reportada como ErrInvalidToken.
func (tg *TokenGenerator) ParseAccessToken(tokenString string) (*AccessTokenClaims, error) {
	claims := &AccessTokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return tg.accessSecretKey, nil
	},
		jwt.WithIssuer(tg.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tg.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, fmt.Errorf("%w: subject inválido", ErrInvalidToken)
	}
	return claims, nil
}
