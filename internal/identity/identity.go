// Package identity valida el JWT que emite la aplicación host con el usuario
// ya autenticado y lo convierte en una fastpass.Identity.
package identity

import (
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/dropDatabas3/fastpass/internal/fastpass"
)

var (
	ErrNoSecret     = errors.New("identity: jwt secret not configured")
	ErrInvalidToken = errors.New("identity: invalid token")
)

// Claims reservados que no se reenvían como fields.
var registered = map[string]struct{}{
	"iss": {}, "sub": {}, "aud": {}, "exp": {}, "nbf": {}, "iat": {}, "jti": {},
	fastpass.ClaimEmail: {}, fastpass.ClaimName: {}, fastpass.ClaimUID: {},
}

// Verifier valida tokens HS256.
type Verifier struct {
	secret   []byte
	issuer   string
	audience string
	leeway   time.Duration
	now      func() time.Time
}

// NewVerifier requiere secret. issuer/audience vacíos no se chequean.
func NewVerifier(secret, issuer, audience string, leeway time.Duration) (*Verifier, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	return &Verifier{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		leeway:   leeway,
		now:      time.Now,
	}, nil
}

// Verify parsea el token y arma la Identity.
//
// uid sale del claim "uid" y cae a "sub". Los claims no registrados de tipo
// string se pasan como Fields; si alguno no es string falla con EncodingError.
func (v *Verifier) Verify(raw string) (fastpass.Identity, error) {
	opts := []jwtv5.ParserOption{
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
		jwtv5.WithLeeway(v.leeway),
		jwtv5.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		opts = append(opts, jwtv5.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwtv5.WithAudience(v.audience))
	}

	claims := jwtv5.MapClaims{}
	tok, err := jwtv5.ParseWithClaims(raw, claims, func(*jwtv5.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil || !tok.Valid {
		return fastpass.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	id := fastpass.Identity{
		Email: claimString(claims, fastpass.ClaimEmail),
		Name:  claimString(claims, fastpass.ClaimName),
		UID:   claimString(claims, fastpass.ClaimUID),
	}
	if id.UID == "" {
		id.UID = claimString(claims, "sub")
	}

	extra := map[string]any{}
	for k, val := range claims {
		if _, ok := registered[k]; ok {
			continue
		}
		extra[k] = val
	}
	fields, err := fastpass.FieldsFromAny(extra)
	if err != nil {
		return fastpass.Identity{}, err
	}
	id.Fields = fields
	return id, nil
}

func claimString(c jwtv5.MapClaims, k string) string {
	s, _ := c[k].(string)
	return s
}
