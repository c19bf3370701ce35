// Package kms holds the signer's in-memory keystore: an ordered, bounded
// vault of BLS key pairs, keyed by their public key.
//
// Entries arrive two ways — freshly generated from hardware randomness, or
// imported from a decrypted EIP-2335 keystore (see package eip2335) — and
// are held only for the process lifetime. There is no persistence layer:
// a Reset (or process restart) discards every secret.
//
// # Usage
//
//	store := kms.NewStore(kms.DefaultCapacity)
//	idx, err := store.InsertGenerated(rand.Reader, nil)
//	if err != nil {
//	    log.Fatalf("could not provision key: %v", err)
//	}
//	root := cryptoutils.SigningRoot32{ /* ... */ }
//	sig, err := store.Sign(idx, root)
package kms
