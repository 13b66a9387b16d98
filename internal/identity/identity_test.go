package identity

import (
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/fastpass/internal/fastpass"
)

const testSecret = "host-app-secret"

func sign(t *testing.T, secret string, method jwtv5.SigningMethod, claims jwtv5.MapClaims) string {
	t.Helper()
	s, err := jwtv5.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func newTestVerifier(t *testing.T, now time.Time) *Verifier {
	t.Helper()
	v, err := NewVerifier(testSecret, "host-app", "fastpass", 30*time.Second)
	require.NoError(t, err)
	v.now = func() time.Time { return now }
	return v
}

func TestNewVerifier_RequiresSecret(t *testing.T) {
	t.Parallel()

	_, err := NewVerifier("", "", "", 0)
	assert.ErrorIs(t, err, ErrNoSecret)
}

func TestVerify_MapsClaims(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0)
	v := newTestVerifier(t, now)
	tok := sign(t, testSecret, jwtv5.SigningMethodHS256, jwtv5.MapClaims{
		"iss":     "host-app",
		"aud":     "fastpass",
		"sub":     "user-1",
		"exp":     now.Add(time.Minute).Unix(),
		"email":   "a@b.com",
		"name":    "A B",
		"uid":     "42",
		"company": "Acme",
	})

	id, err := v.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", id.Email)
	assert.Equal(t, "A B", id.Name)
	assert.Equal(t, "42", id.UID)
	assert.Equal(t, map[string]string{"company": "Acme"}, id.Fields)
}

func TestVerify_UIDFallsBackToSub(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0)
	v := newTestVerifier(t, now)
	tok := sign(t, testSecret, jwtv5.SigningMethodHS256, jwtv5.MapClaims{
		"iss": "host-app", "aud": "fastpass", "sub": "user-1",
		"exp": now.Add(time.Minute).Unix(), "email": "a@b.com", "name": "A",
	})

	id, err := v.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id.UID)
	assert.Empty(t, id.Fields)
}

func TestVerify_Rejects(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0)
	base := func() jwtv5.MapClaims {
		return jwtv5.MapClaims{
			"iss": "host-app", "aud": "fastpass", "sub": "u",
			"exp": now.Add(time.Minute).Unix(),
		}
	}

	tests := []struct {
		name string
		tok  func(t *testing.T) string
	}{
		{"wrong secret", func(t *testing.T) string {
			return sign(t, "other", jwtv5.SigningMethodHS256, base())
		}},
		{"wrong method", func(t *testing.T) string {
			return sign(t, testSecret, jwtv5.SigningMethodHS512, base())
		}},
		{"expired", func(t *testing.T) string {
			c := base()
			c["exp"] = now.Add(-time.Minute).Unix()
			return sign(t, testSecret, jwtv5.SigningMethodHS256, c)
		}},
		{"wrong issuer", func(t *testing.T) string {
			c := base()
			c["iss"] = "evil"
			return sign(t, testSecret, jwtv5.SigningMethodHS256, c)
		}},
		{"wrong audience", func(t *testing.T) string {
			c := base()
			c["aud"] = "other"
			return sign(t, testSecret, jwtv5.SigningMethodHS256, c)
		}},
		{"garbage", func(*testing.T) string { return "not.a.jwt" }},
	}

	v := newTestVerifier(t, now)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(tt.tok(t))
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestVerify_LeewayAcceptsJustExpired(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0)
	v := newTestVerifier(t, now)
	tok := sign(t, testSecret, jwtv5.SigningMethodHS256, jwtv5.MapClaims{
		"iss": "host-app", "aud": "fastpass", "sub": "u",
		"exp": now.Add(-10 * time.Second).Unix(),
	})
	_, err := v.Verify(tok)
	assert.NoError(t, err)
}

func TestVerify_NonStringFieldIsEncodingError(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0)
	v := newTestVerifier(t, now)
	tok := sign(t, testSecret, jwtv5.SigningMethodHS256, jwtv5.MapClaims{
		"iss": "host-app", "aud": "fastpass", "sub": "u",
		"exp": now.Add(time.Minute).Unix(), "age": 33,
	})
	_, err := v.Verify(tok)
	assert.ErrorIs(t, err, fastpass.ErrEncoding)
}
