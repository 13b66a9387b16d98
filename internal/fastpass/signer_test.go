package fastpass

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testNonce = "abc123"
	testTS    = int64(1700000000)
)

func fixedSigner() *Signer {
	return NewSigner(
		WithNoncer(StaticNoncer(testNonce)),
		WithClock(FixedClock(time.Unix(testTS, 0))),
	)
}

func testCreds(t *testing.T) Credentials {
	t.Helper()
	c, err := NewCredentials("CK", "CS")
	require.NoError(t, err)
	return c
}

func testClaims() Claims {
	return Claims{"email": "a@b.com", "name": "A B", "uid": "42"}
}

func TestSign_KnownSignature(t *testing.T) {
	t.Parallel()

	req, err := fixedSigner().Sign("GET", "http://getsatisfaction.com/fastpass", testCreds(t), testClaims())
	require.NoError(t, err)
	assert.Equal(t, "ogGi5rV2FDLx96Miqv/0Z+wCEfk=", req.Signature())

	req, err = fixedSigner().Sign("GET", "https://getsatisfaction.com/fastpass", testCreds(t), testClaims())
	require.NoError(t, err)
	assert.Equal(t, "f7ajGahxRMHP36yQv7cZeGJIK6s=", req.Signature())
}

func TestSign_Deterministic(t *testing.T) {
	t.Parallel()

	a, err := fixedSigner().Sign("GET", "http://getsatisfaction.com/fastpass", testCreds(t), testClaims())
	require.NoError(t, err)
	b, err := fixedSigner().Sign("GET", "http://getsatisfaction.com/fastpass", testCreds(t), testClaims())
	require.NoError(t, err)

	assert.Equal(t, a.Signature(), b.Signature())
	assert.Equal(t, a.Params, b.Params)
	assert.Equal(t, a.Query(), b.Query())
}

func TestSign_EscapedValuesAndSecret(t *testing.T) {
	t.Parallel()

	creds, err := NewCredentials("CK", "s3cr&t key")
	require.NoError(t, err)
	claims := testClaims()
	claims["avatar"] = "https://x.test/a b.png?s=1&t=2"
	claims["company"] = "Ünïcode & Co"

	req, err := fixedSigner().Sign("get", "https://community.example.org/fastpass", creds, claims)
	require.NoError(t, err)
	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "jdP9mcdmlrN3uAGBoMlmUx8Cktk=", req.Signature())
}

func TestSign_OrderAndProtocolParams(t *testing.T) {
	t.Parallel()

	req, err := fixedSigner().Sign("GET", "http://getsatisfaction.com/fastpass", testCreds(t), testClaims())
	require.NoError(t, err)

	keys := make([]string, len(req.Params))
	for i, p := range req.Params {
		keys[i] = p.Key
	}
	assert.Equal(t, []string{
		"email", "name",
		"oauth_consumer_key", "oauth_nonce", "oauth_signature_method", "oauth_timestamp", "oauth_version",
		"uid",
		"oauth_signature",
	}, keys)

	v, _ := req.Params.Get(ParamTimestamp)
	assert.Equal(t, "1700000000", v)
	v, _ = req.Params.Get(ParamNonce)
	assert.Equal(t, testNonce, v)
	v, _ = req.Params.Get(ParamSignatureMethod)
	assert.Equal(t, "HMAC-SHA1", v)
	v, _ = req.Params.Get(ParamVersion)
	assert.Equal(t, "1.0", v)
	v, _ = req.Params.Get(ParamConsumerKey)
	assert.Equal(t, "CK", v)
}

func TestSign_IndependentRecomputation(t *testing.T) {
	t.Parallel()

	req, err := fixedSigner().Sign("GET", "http://getsatisfaction.com/fastpass", testCreds(t), testClaims())
	require.NoError(t, err)

	base := "GET&http%3A%2F%2Fgetsatisfaction.com%2Ffastpass&" +
		"email%3Da%2540b.com%26name%3DA%2520B%26oauth_consumer_key%3DCK%26oauth_nonce%3Dabc123" +
		"%26oauth_signature_method%3DHMAC-SHA1%26oauth_timestamp%3D1700000000%26oauth_version%3D1.0%26uid%3D42"

	mac := hmac.New(sha1.New, []byte("CS&"))
	mac.Write([]byte(base))
	assert.Equal(t, base64.StdEncoding.EncodeToString(mac.Sum(nil)), req.Signature())
}

func TestSign_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	in := testClaims()
	_, err := fixedSigner().Sign("GET", "http://getsatisfaction.com/fastpass", testCreds(t), in)
	require.NoError(t, err)
	assert.Equal(t, testClaims(), in)
}

func TestSign_ConfigurationError(t *testing.T) {
	t.Parallel()

	_, err := fixedSigner().Sign("GET", "http://h/fastpass", Credentials{}, testClaims())
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, []string{"key", "secret"}, cfgErr.Fields)
	assert.True(t, errors.Is(err, ErrConfiguration))

	_, err = NewCredentials("CK", "")
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, []string{"secret"}, cfgErr.Fields)
}

func TestSign_EncodingErrors(t *testing.T) {
	t.Parallel()

	cases := map[string]Claims{
		"empty key":     {"": "x"},
		"reserved key":  {"oauth_token": "x"},
		"invalid value": {"bio": string([]byte{0xff, 0xfe})},
		"invalid key":   {string([]byte{0xc3}): "x"},
		"ampersand key": {"a&b": "v"},
		"equals key":    {"x=y": "v"},
		"percent key":   {"p%zz": "v"},
		"fragment key":  {"frag#x": "v"},
		"space key":     {"plan type": "v"},
		"non-ascii key": {"año": "v"},
	}
	for name, claims := range cases {
		claims := claims
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := fixedSigner().Sign("GET", "http://h/fastpass", testCreds(t), claims)
			var encErr *EncodingError
			require.ErrorAs(t, err, &encErr)
			assert.ErrorIs(t, err, ErrEncoding)
		})
	}
}

func TestSign_EncodingErrorIsDeterministic(t *testing.T) {
	t.Parallel()

	claims := Claims{"z z": "v", "m&m": "v", "b=b": "v", "ok": "v"}
	for i := 0; i < 20; i++ {
		_, err := fixedSigner().Sign("GET", "http://h/fastpass", testCreds(t), claims)
		var encErr *EncodingError
		require.ErrorAs(t, err, &encErr)
		assert.Equal(t, "b=b", encErr.Key)
	}
}

func TestSign_UnreservedKeysRoundTrip(t *testing.T) {
	t.Parallel()

	claims := Claims{"plan-type": "gold plus", "team_id": "7", "v1.2~x": "a&b=c"}
	req, err := fixedSigner().Sign("GET", "http://h/fastpass", testCreds(t), claims)
	require.NoError(t, err)

	v, err := Verify(req.URL(), testCreds(t))
	require.NoError(t, err)
	assert.Equal(t, claims, v.Claims)
}

func TestUUIDNoncer_Unique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{}, 1000)
	var n UUIDNoncer
	for i := 0; i < 1000; i++ {
		v := n.Nonce()
		require.Len(t, v, 32)
		_, dup := seen[v]
		require.False(t, dup)
		seen[v] = struct{}{}
	}
}
