package token

import (
	"errors"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mehmetcc/flightdesk/internal/config"
	"github.com/mehmetcc/flightdesk/internal/user"
	"github.com/mehmetcc/flightdesk/pkg/id"
	"go.uber.org/zap"
)

// Codec issues and reads session tokens. Implementations are safe for
// concurrent use.
type Codec interface {
	Issue(subject, userID string, role user.Role, displayName string) (string, error)
	// Validate never fails loudly: any malformed, forged or expired token is
	// simply reported as false.
	Validate(tokenString string) bool
	// Parse checks structure and signature but not expiry.
	Parse(tokenString string) (*Claims, error)
}

type Option func(*tokenCodec)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *tokenCodec) {
		c.now = now
	}
}

type tokenCodec struct {
	logger     *zap.Logger
	secret     []byte
	ttl        time.Duration
	issuer     string
	audience   string
	signingAlg jwt.SigningMethod
	parser     *jwt.Parser
	now        func() time.Time
}

// NewCodec builds an HS256 codec. The TTL is truncated to whole seconds so
// that exp - iat equals the TTL exactly on the wire.
func NewCodec(cfg *config.JWTConfig, logger *zap.Logger, opts ...Option) Codec {
	c := &tokenCodec{
		logger:     logger,
		secret:     []byte(cfg.Secret),
		ttl:        cfg.TTL.Truncate(time.Second),
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		signingAlg: jwt.SigningMethodHS256,
		now:        time.Now,
	}
	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{c.signingAlg.Alg()}),
		jwt.WithStrictDecoding(),
		// expiry is checked against our own clock in Validate
		jwt.WithoutClaimsValidation(),
	)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *tokenCodec) Issue(subject, userID string, role user.Role, displayName string) (string, error) {
	issuedAt := c.now().UTC().Truncate(time.Second)
	claims := &Claims{
		UserID:      userID,
		Role:        role,
		DisplayName: displayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(c.ttl)),
			ID:        string(id.NewTokenID()),
		},
	}
	if c.issuer != "" {
		claims.Issuer = c.issuer
	}
	if c.audience != "" {
		claims.Audience = jwt.ClaimStrings{c.audience}
	}

	signed, err := jwt.NewWithClaims(c.signingAlg, claims).SignedString(c.secret)
	if err != nil {
		c.logger.Error("failed to sign token", zap.Error(err))
		return "", err
	}
	return signed, nil
}

func (c *tokenCodec) Validate(tokenString string) bool {
	claims, err := c.Parse(tokenString)
	if err != nil {
		c.logger.Debug("token rejected", zap.Error(err))
		return false
	}
	if err := c.checkClaims(claims); err != nil {
		c.logger.Debug("token rejected", zap.Error(err))
		return false
	}
	return true
}

func (c *tokenCodec) Parse(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, &MalformedTokenError{Err: ErrEmptyToken}
	}

	var claims Claims
	tkn, err := c.parser.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		return nil, &MalformedTokenError{Err: err}
	}
	if !tkn.Valid {
		return nil, &MalformedTokenError{Err: jwt.ErrTokenSignatureInvalid}
	}
	return &claims, nil
}

// checkClaims applies expiry, issuer and audience rules. A token whose
// expiry equals the current instant is already expired.
func (c *tokenCodec) checkClaims(claims *Claims) error {
	if claims.ExpiresAt == nil {
		return ErrMissingExpiry
	}
	if !c.now().Before(claims.ExpiresAt.Time) {
		return ErrTokenExpired
	}
	if c.issuer != "" && claims.Issuer != c.issuer {
		return ErrInvalidIssuer
	}
	if c.audience != "" && !slices.Contains(claims.Audience, c.audience) {
		return ErrInvalidAudience
	}
	return nil
}

// IsMalformed reports whether err came from Parse rejecting a token.
func IsMalformed(err error) bool {
	var me *MalformedTokenError
	return errors.As(err, &me)
}
