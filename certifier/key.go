package certifier

import (
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/flashbots/go-utils/signature"
	"github.com/hashicorp/vault/shamir"
	"github.com/ruteri/luw-coordination-registry/interfaces"
)

var (
	ErrInvalidThreshold = errors.New("threshold must be at least 2 and at most the number of shares")
	ErrDuplicateShare   = errors.New("share already submitted")
	ErrLocked           = errors.New("certifier key not recovered yet")
)

// Key is the certifier private key.
type Key struct {
	priv *ecdsa.PrivateKey
}

func Generate() (*Key, error) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return &Key{priv: priv}, nil
}

// FromHex parses a hex private key, with or without the 0x prefix.
func FromHex(s string) (*Key, error) {
	priv, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return &Key{priv: priv}, nil
}

func (k *Key) Address() interfaces.Address {
	return crypto.PubkeyToAddress(k.priv.PublicKey)
}

// Hex returns the private key without 0x prefix.
func (k *Key) Hex() string {
	return hex.EncodeToString(crypto.FromECDSA(k.priv))
}

// Signer returns a request signer for the key.
func (k *Key) Signer() (*signature.Signer, error) {
	return signature.NewSignerFromHexPrivateKey(k.Hex())
}

// Split splits the key into total shares, any threshold of which recover it.
func Split(k *Key, threshold, total int) ([][]byte, error) {
	if threshold < 2 || total < threshold {
		return nil, ErrInvalidThreshold
	}
	shares, err := shamir.Split(crypto.FromECDSA(k.priv), total, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to split key: %w", err)
	}
	return shares, nil
}

// Recovery collects shares until threshold is reached.
type Recovery struct {
	mu        sync.Mutex
	threshold int
	shares    map[int][]byte
	key       *Key
}

func NewRecovery(threshold int) (*Recovery, error) {
	if threshold < 2 {
		return nil, ErrInvalidThreshold
	}
	return &Recovery{
		threshold: threshold,
		shares:    make(map[int][]byte),
	}, nil
}

// SubmitShare records the share of one holder, identified by index. Once
// threshold shares are in, the key is reconstructed and the shares wiped.
func (r *Recovery) SubmitShare(index int, share []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.key != nil {
		return nil
	}
	if _, ok := r.shares[index]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateShare, index)
	}
	r.shares[index] = append([]byte(nil), share...)

	if len(r.shares) < r.threshold {
		return nil
	}

	collected := make([][]byte, 0, len(r.shares))
	for _, s := range r.shares {
		collected = append(collected, s)
	}
	secret, err := shamir.Combine(collected)
	if err != nil {
		return fmt.Errorf("failed to combine shares: %w", err)
	}
	defer wipe(secret)

	priv, err := crypto.ToECDSA(secret)
	if err != nil {
		// enough shares but from different splits; start over
		r.reset()
		return fmt.Errorf("shares do not recover a valid key: %w", err)
	}
	r.key = &Key{priv: priv}
	r.reset()
	return nil
}

// Key returns the recovered key, or ErrLocked.
func (r *Recovery) Key() (*Key, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.key == nil {
		return nil, ErrLocked
	}
	return r.key, nil
}

// Submitted returns how many shares are pending.
func (r *Recovery) Submitted() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.shares)
}

func (r *Recovery) reset() {
	for _, s := range r.shares {
		wipe(s)
	}
	r.shares = make(map[int][]byte)
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
