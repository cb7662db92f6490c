package api

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/flashbots/go-utils/signature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func post(path string, body []byte, sig string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	if sig != "" {
		req.Header.Set(SignatureHeader, sig)
	}
	return req
}

func TestVerifier(t *testing.T) {
	signer, err := signature.NewRandomSigner()
	require.NoError(t, err)

	body, sig, err := SignRequest(signer, http.MethodPost, "/api/luw/0/state", StateRequest{StateCode: 2}, DefaultRequestTTL)
	require.NoError(t, err)

	v := NewVerifier(MaxRequestTTL)

	_, _, err = v.Verify(post("/api/luw/0/state", body, ""))
	assert.ErrorIs(t, err, ErrBadSignature)

	_, _, err = v.Verify(post("/api/luw/1/state", body, sig))
	assert.ErrorIs(t, err, ErrBadSignature)

	tampered := bytes.Replace(body, []byte(`"/api/luw/0/state"`), []byte(`"/api/luw/1/state"`), 1)
	_, _, err = v.Verify(post("/api/luw/1/state", tampered, sig))
	assert.ErrorIs(t, err, ErrBadSignature)

	caller, payload, err := v.Verify(post("/api/luw/0/state", body, sig))
	require.NoError(t, err)
	assert.Equal(t, signer.Address(), caller)
	assert.JSONEq(t, `{"state_code":2}`, string(payload))

	_, _, err = v.Verify(post("/api/luw/0/state", body, sig))
	assert.ErrorIs(t, err, ErrBadSignature)
	assert.Contains(t, err.Error(), "nonce already used")
}

func TestVerifier_ForgetsExpiredNonces(t *testing.T) {
	signer, err := signature.NewRandomSigner()
	require.NoError(t, err)

	now := time.Now()
	v := NewVerifier(MaxRequestTTL)
	v.now = func() time.Time { return now }

	body, sig, err := SignRequest(signer, http.MethodPost, "/api/twins", RegisterTwinRequest{AnchorHash: "h"}, DefaultRequestTTL)
	require.NoError(t, err)
	_, _, err = v.Verify(post("/api/twins", body, sig))
	require.NoError(t, err)
	assert.Len(t, v.seen, 1)

	// once the request has expired it is rejected as expired, and its nonce
	// no longer needs to be remembered
	now = now.Add(DefaultRequestTTL + time.Minute)
	_, _, err = v.Verify(post("/api/twins", body, sig))
	require.True(t, errors.Is(err, ErrBadSignature))
	assert.Contains(t, err.Error(), "expired")

	fresh, freshSig, err := SignRequest(signer, http.MethodPost, "/api/twins", RegisterTwinRequest{AnchorHash: "h"}, 2*DefaultRequestTTL+time.Minute)
	require.NoError(t, err)
	_, _, err = v.Verify(post("/api/twins", fresh, freshSig))
	require.NoError(t, err)
	assert.Len(t, v.seen, 1)
}

func TestVerifier_RejectsMalformedEnvelope(t *testing.T) {
	signer, err := signature.NewRandomSigner()
	require.NoError(t, err)

	body := []byte(`{"state_code":2}`)
	sig, err := signer.Create(body)
	require.NoError(t, err)

	_, _, err = NewVerifier(MaxRequestTTL).Verify(post("/api/luw/0/state", body, sig))
	assert.ErrorIs(t, err, ErrBadSignature)
}
