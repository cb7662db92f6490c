package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/flashbots/go-utils/signature"
	"github.com/google/uuid"
	"github.com/ruteri/luw-coordination-registry/interfaces"
)

const (
	// maxBodySize bounds signed request bodies.
	maxBodySize = 1 << 20
	maxNonceLen = 128

	// DefaultRequestTTL is how long a request signed by Client stays valid.
	DefaultRequestTTL = time.Minute
	// MaxRequestTTL is the furthest expiry a Verifier accepts.
	MaxRequestTTL = 5 * time.Minute
)

// ErrBadSignature is returned when a mutating request is unsigned, its
// signature does not verify, or the signed envelope does not match the
// request it arrived with.
var ErrBadSignature = errors.New("bad request signature")

// SignedRequest is the body of every mutating request. The signature covers
// the whole envelope, so the target path and the nonce cannot be swapped
// without invalidating it.
type SignedRequest struct {
	Method    string          `json:"method"`
	Path      string          `json:"path"`
	Nonce     string          `json:"nonce"`
	ExpiresAt int64           `json:"expires_at"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// SignRequest wraps payload in a SignedRequest bound to method and path and
// returns the encoded body with its signature header value.
func SignRequest(signer *signature.Signer, method, path string, payload any, ttl time.Duration) ([]byte, string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, "", fmt.Errorf("could not encode payload: %w", err)
	}
	body, err := json.Marshal(SignedRequest{
		Method:    method,
		Path:      path,
		Nonce:     uuid.NewString(),
		ExpiresAt: time.Now().Add(ttl).Unix(),
		Payload:   raw,
	})
	if err != nil {
		return nil, "", fmt.Errorf("could not encode request: %w", err)
	}
	sig, err := signer.Create(body)
	if err != nil {
		return nil, "", fmt.Errorf("could not sign request: %w", err)
	}
	return body, sig, nil
}

type nonceKey struct {
	signer interfaces.Address
	nonce  string
}

// Verifier authenticates signed requests and remembers every accepted nonce
// until its request expires. Nonces are kept in memory only; MaxRequestTTL
// bounds the window in which a restarted server would accept a replay.
type Verifier struct {
	maxTTL time.Duration
	now    func() time.Time

	mu   sync.Mutex
	seen map[nonceKey]time.Time
}

func NewVerifier(maxTTL time.Duration) *Verifier {
	return &Verifier{
		maxTTL: maxTTL,
		now:    time.Now,
		seen:   make(map[nonceKey]time.Time),
	}
}

// Verify recovers the signer of r and returns the envelope payload. The
// envelope must name r's method and path, be unexpired and carry a nonce
// not seen before from the same signer.
func (v *Verifier) Verify(r *http.Request) (interfaces.Address, json.RawMessage, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return interfaces.Address{}, nil, fmt.Errorf("failed to read request body: %w", err)
	}

	header := r.Header.Get(SignatureHeader)
	if header == "" {
		return interfaces.Address{}, nil, fmt.Errorf("%w: missing %s header", ErrBadSignature, SignatureHeader)
	}
	caller, err := signature.Verify(header, body)
	if err != nil {
		return interfaces.Address{}, nil, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}

	var env SignedRequest
	if err := json.Unmarshal(body, &env); err != nil {
		return interfaces.Address{}, nil, fmt.Errorf("%w: malformed envelope: %v", ErrBadSignature, err)
	}
	if env.Method != r.Method || env.Path != r.URL.Path {
		return interfaces.Address{}, nil, fmt.Errorf("%w: signed for %s %s", ErrBadSignature, env.Method, env.Path)
	}
	if env.Nonce == "" || len(env.Nonce) > maxNonceLen {
		return interfaces.Address{}, nil, fmt.Errorf("%w: invalid nonce", ErrBadSignature)
	}

	now := v.now()
	expires := time.Unix(env.ExpiresAt, 0)
	if !expires.After(now) {
		return interfaces.Address{}, nil, fmt.Errorf("%w: request expired", ErrBadSignature)
	}
	if expires.Sub(now) > v.maxTTL {
		return interfaces.Address{}, nil, fmt.Errorf("%w: expiry too far in the future", ErrBadSignature)
	}

	if err := v.consume(nonceKey{caller, env.Nonce}, expires, now); err != nil {
		return interfaces.Address{}, nil, err
	}
	return caller, env.Payload, nil
}

func (v *Verifier) consume(key nonceKey, expires, now time.Time) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	for k, exp := range v.seen {
		if !exp.After(now) {
			delete(v.seen, k)
		}
	}
	if _, ok := v.seen[key]; ok {
		return fmt.Errorf("%w: nonce already used", ErrBadSignature)
	}
	v.seen[key] = expires
	return nil
}
