// Package cryptox derives and verifies password credentials.
//
// A credential is stored as hex(digest) + "." + salt, where salt is the hex
// text of 16 random bytes and digest is scrypt(password, salt) with
// N=16384, r=8, p=1 and a 64-byte key. The salt text itself (not its decoded
// bytes) is the KDF salt, which keeps credentials created by earlier versions
// of the portal valid.
package cryptox

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/dmitrijs2005/loanportal/internal/common"
	"github.com/dmitrijs2005/loanportal/internal/metrics"
	"golang.org/x/crypto/scrypt"
	"golang.org/x/sync/semaphore"
)

const (
	scryptN = 16384
	scryptR = 8
	scryptP = 1

	// KeyLen is the digest length in bytes.
	KeyLen = 64
	// SaltLen is the number of random bytes behind the hex salt text.
	SaltLen = 16

	separator = "."
)

// DummyCredential is well-formed but matches no password. Verifying against
// it costs the same as a real verification.
var DummyCredential = strings.Repeat("00", KeyLen) + separator + strings.Repeat("00", SaltLen)

// DeriveKey runs scrypt over password and salt.
func DeriveKey(password, salt []byte) ([]byte, error) {
	return scrypt.Key(password, salt, scryptN, scryptR, scryptP, KeyLen)
}

// Hasher hashes and verifies passwords. At most a fixed number of
// derivations run at once; callers beyond that wait for a slot or for their
// context to end.
type Hasher struct {
	slots *semaphore.Weighted
}

// NewHasher returns a Hasher running up to concurrency derivations at once.
// A non-positive value means GOMAXPROCS.
func NewHasher(concurrency int) *Hasher {
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	return &Hasher{slots: semaphore.NewWeighted(int64(concurrency))}
}

// Hash creates a credential for plaintext with a fresh salt.
func (h *Hasher) Hash(ctx context.Context, plaintext string) (string, error) {
	salt, err := common.MakeRandHexString(SaltLen)
	if err != nil {
		return "", fmt.Errorf("error generating salt: %w", err)
	}

	digest, err := h.derive(ctx, "hash", []byte(plaintext), []byte(salt))
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(digest) + separator + salt, nil
}

// Verify reports whether supplied matches the stored credential. A malformed
// credential never matches and is not an error; the error is reserved for
// context cancellation and KDF failures.
func (h *Hasher) Verify(ctx context.Context, supplied, stored string) (bool, error) {
	want, salt, ok := splitCredential(stored)
	if !ok {
		return false, nil
	}

	got, err := h.derive(ctx, "verify", []byte(supplied), salt)
	if err != nil {
		return false, err
	}

	return subtle.ConstantTimeCompare(want, got) == 1, nil
}

func (h *Hasher) derive(ctx context.Context, op string, password, salt []byte) ([]byte, error) {
	start := time.Now()
	defer func() {
		metrics.KDFDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	if err := h.slots.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer h.slots.Release(1)

	key, err := DeriveKey(password, salt)
	if err != nil {
		return nil, fmt.Errorf("error deriving key: %w", err)
	}
	return key, nil
}

// splitCredential parses "hexdigest.salt".
func splitCredential(stored string) (digest, salt []byte, ok bool) {
	digestHex, saltText, found := strings.Cut(stored, separator)
	if !found || digestHex == "" || saltText == "" || strings.Contains(saltText, separator) {
		return nil, nil, false
	}

	digest, err := hex.DecodeString(digestHex)
	if err != nil || len(digest) != KeyLen {
		return nil, nil, false
	}

	return digest, []byte(saltText), true
}
