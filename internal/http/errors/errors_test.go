package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/fastpass/internal/fastpass"
)

func TestFromError_FastpassMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		code   string
		status int
		detail string
	}{
		{"validation", &fastpass.ValidationError{Fields: []string{"name", "uid"}}, "MISSING_FIELDS", 400, "name,uid"},
		{"encoding", &fastpass.EncodingError{Key: "age", Reason: "not a string"}, "INVALID_FORMAT", 400, "age: not a string"},
		{"configuration", &fastpass.ConfigurationError{Fields: []string{"secret"}}, "FASTPASS_MISCONFIGURED", 500, ""},
		{"joined config wins", stderrors.Join(
			&fastpass.ConfigurationError{Fields: []string{"key"}},
			&fastpass.ValidationError{Fields: []string{"email"}},
		), "FASTPASS_MISCONFIGURED", 500, ""},
		{"signature", fmt.Errorf("verify: %w", fastpass.ErrSignatureMismatch), "INVALID_SIGNATURE", 401, ""},
		{"consumer", fastpass.ErrConsumerMismatch, "INVALID_SIGNATURE", 401, ""},
		{"stale", fastpass.ErrStaleTimestamp, "STALE_URL", 401, ""},
		{"malformed", fastpass.ErrMalformedURL, "MALFORMED_URL", 400, ""},
		{"other", stderrors.New("boom"), "INTERNAL_SERVER_ERROR", 500, ""},
		{"app error passthrough", ErrNonceReused, "NONCE_REUSED", 409, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromError(tt.err)
			assert.Equal(t, tt.code, got.Code)
			assert.Equal(t, tt.status, got.HTTPStatus)
			assert.Equal(t, tt.detail, got.Detail)
		})
	}
}

func TestWithDetail_DoesNotMutateBase(t *testing.T) {
	t.Parallel()

	_ = ErrMissingFields.WithDetail("x")
	assert.Empty(t, ErrMissingFields.Detail)
}

func TestWriteError(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	rr.Header().Set("X-Request-ID", "rid-1")
	WriteError(rr, &fastpass.ValidationError{Fields: []string{"uid"}})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "MISSING_FIELDS", body["code"])
	assert.Equal(t, "uid", body["detail"])
	assert.Equal(t, "rid-1", body["request_id"])
}
