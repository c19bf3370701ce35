package kms

import (
	"crypto/sha256"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/ruteri/tee-bls-signer/bls"
	"github.com/ruteri/tee-bls-signer/cryptoutils"
)

// DefaultCapacity is the default number of key pairs the store will hold
// before InsertGenerated/InsertFromSecret start failing with ErrFull.
const DefaultCapacity = 10

// ErrFull is returned when the store is already at capacity.
var ErrFull = errors.New("kms: keystore is full")

// ErrDuplicateSecret is returned by InsertFromSecret when the secret scalar
// already matches a stored key pair.
var ErrDuplicateSecret = errors.New("kms: secret already present")

// ErrNotFound is returned by LookupByPublicKeyHex when no stored key
// matches.
var ErrNotFound = errors.New("kms: public key not found")

// ErrRNG is returned by InsertGenerated when the randomness source fails.
var ErrRNG = errors.New("kms: randomness source failed")

// KeyPair is a BLS secret scalar together with its derived public key.
// The invariant that Public always matches Secret is established once, at
// construction, and never re-derived afterwards.
type KeyPair struct {
	secret *bls.SecretKey
	Public cryptoutils.PublicKey48
}

// Store is an ordered, capacity-bounded, in-memory vault of KeyPair
// entries. Access is single-threaded in practice, but the store still
// guards its state with a mutex so that concurrent callers are serialized.
type Store struct {
	mu       sync.Mutex
	capacity int
	pairs    []KeyPair
}

// NewStore creates an empty store with the given capacity.
func NewStore(capacity int) *Store {
	return &Store{capacity: capacity}
}

// Size returns the current number of stored key pairs.
func (s *Store) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pairs)
}

// InsertGenerated draws 32 bytes of randomness from rng, hashes it into
// 32-byte input key material, runs BLS keygen with the given info string,
// derives the G1 public key, and appends the new pair. The insertion is
// atomic: nothing is appended unless every step above succeeds.
func (s *Store) InsertGenerated(rng io.Reader, info []byte) (int, error) {
	var raw [32]byte
	if _, err := io.ReadFull(rng, raw[:]); err != nil {
		return 0, ErrRNG
	}
	ikm := sha256.Sum256(raw[:])
	cryptoutils.Zero(raw[:])

	sk, err := bls.Keygen(ikm[:], info)
	cryptoutils.Zero(ikm[:])
	if err != nil {
		return 0, err
	}

	return s.insert(sk)
}

// InsertFromSecret appends a key pair built from an already-known secret
// scalar, as produced by a successful EIP-2335 import. Rejects an exact
// duplicate of a stored secret.
func (s *Store) InsertFromSecret(secret [32]byte) (int, error) {
	s.mu.Lock()
	for _, p := range s.pairs {
		existing := p.secret.Bytes()
		if cryptoutils.ConstantTimeEqual(existing[:], secret[:]) {
			s.mu.Unlock()
			return 0, ErrDuplicateSecret
		}
	}
	s.mu.Unlock()

	sk, err := bls.SecretKeyFromBytes(secret)
	if err != nil {
		return 0, err
	}
	return s.insert(sk)
}

func (s *Store) insert(sk *bls.SecretKey) (int, error) {
	pub := sk.PublicKey()

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pairs) >= s.capacity {
		return 0, ErrFull
	}
	s.pairs = append(s.pairs, KeyPair{secret: sk, Public: pub})
	return len(s.pairs) - 1, nil
}

// Capacity returns the maximum number of key pairs the store will hold.
func (s *Store) Capacity() int {
	return s.capacity
}

// HasSecret reports whether secret already matches a stored key pair,
// without inserting it. Used by batch import to validate a whole request
// before mutating the store.
func (s *Store) HasSecret(secret [32]byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.pairs {
		existing := p.secret.Bytes()
		if cryptoutils.ConstantTimeEqual(existing[:], secret[:]) {
			return true
		}
	}
	return false
}

// LookupByPublicKeyHex returns the index of the stored key pair whose
// public key matches pkHex (96-char hex, with or without a 0x prefix; the
// comparison itself is case-insensitive), or ErrNotFound.
func (s *Store) LookupByPublicKeyHex(pkHex string) (int, error) {
	pkHex = strings.ToLower(strings.TrimPrefix(pkHex, "0x"))

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.pairs {
		if p.Public.Hex() == pkHex {
			return i, nil
		}
	}
	return 0, ErrNotFound
}

// PublicKeys returns the public keys of every stored key pair, in
// insertion order.
func (s *Store) PublicKeys() []cryptoutils.PublicKey48 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]cryptoutils.PublicKey48, len(s.pairs))
	for i, p := range s.pairs {
		out[i] = p.Public
	}
	return out
}

// Sign produces a signature over root under the key pair at idx.
func (s *Store) Sign(idx int, root cryptoutils.SigningRoot32) (cryptoutils.Signature96, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx < 0 || idx >= len(s.pairs) {
		return cryptoutils.Signature96{}, ErrNotFound
	}
	return s.pairs[idx].secret.Sign(root), nil
}

// Reset zeroizes every stored secret and empties the store.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.pairs {
		secret := s.pairs[i].secret.Bytes()
		cryptoutils.Zero(secret[:])
	}
	s.pairs = nil
}
