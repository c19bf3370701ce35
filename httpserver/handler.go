package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/ruteri/tee-bls-signer/bls"
	"github.com/ruteri/tee-bls-signer/cryptoutils"
	"github.com/ruteri/tee-bls-signer/eip2335"
	"github.com/ruteri/tee-bls-signer/kms"
	"github.com/ruteri/tee-bls-signer/metrics"
)

type signRequestBody struct {
	SigningRoot string `json:"signingRoot"`
}

type importRequestBody struct {
	Keystores []string `json:"keystores"`
	Passwords []string `json:"passwords"`
}

// Handler ties the keystore store and the EIP-2335 pipeline to the four
// endpoints the parser can classify.
type Handler struct {
	store  *kms.Store
	limits eip2335.Limits
	log    *slog.Logger
}

// NewHandler builds a Handler around an already-constructed store.
func NewHandler(store *kms.Store, limits eip2335.Limits, log *slog.Logger) *Handler {
	return &Handler{store: store, limits: limits, log: log}
}

// Handle dispatches a parsed request to its endpoint and returns the
// composed wire response.
func (h *Handler) Handle(req Request) []byte {
	metrics.RequestsTotal.WithLabelValues(endpointLabel(req.Endpoint)).Inc()
	switch req.Endpoint {
	case EndpointUpcheck:
		return ComposeUpcheck()
	case EndpointListKeys:
		return ComposeListKeys(h.store.PublicKeys())
	case EndpointSign:
		return h.handleSign(req)
	case EndpointImport:
		return h.handleImport(req)
	default:
		return ComposeBadRequest()
	}
}

func endpointLabel(kind EndpointKind) string {
	switch kind {
	case EndpointUpcheck:
		return "upcheck"
	case EndpointListKeys:
		return "list_keys"
	case EndpointSign:
		return "sign"
	case EndpointImport:
		return "import"
	default:
		return "unknown"
	}
}

// ComposeForError renders the wire response for a ParseResult.Err value:
// 404 if the error is specifically "public key not found", 400 otherwise.
// Parse itself never produces ErrNotFound; this exists so callers can run
// every failure path, parser or handler, through one function.
func ComposeForError(err error) []byte {
	if errors.Is(err, ErrNotFound) {
		return ComposeNotFound()
	}
	return ComposeBadRequest()
}

func (h *Handler) handleSign(req Request) []byte {
	idx, err := h.store.LookupByPublicKeyHex(req.PubKeyHex)
	if err != nil {
		return ComposeNotFound()
	}

	var body signRequestBody
	if err := json.Unmarshal(req.Body, &body); err != nil {
		return ComposeBadRequest()
	}

	root, err := cryptoutils.SigningRoot32FromHex(body.SigningRoot)
	if err != nil {
		return ComposeBadRequest()
	}

	sig, err := h.store.Sign(idx, root)
	if err != nil {
		h.log.Error("sign failed on a looked-up key", "err", err)
		return ComposeBadRequest()
	}

	metrics.SignTotal.Inc()
	return ComposeSign(sig, req.Accept)
}

// handleImport runs the whole batch through eip2335.Decrypt first and only
// touches the store once every keystore/password pair has validated, so a
// failure partway through never leaves a partial import behind.
func (h *Handler) handleImport(req Request) []byte {
	var body importRequestBody
	if err := json.Unmarshal(req.Body, &body); err != nil {
		metrics.ImportFailuresTotal.Inc()
		return ComposeBadRequest()
	}
	if len(body.Keystores) == 0 || len(body.Keystores) != len(body.Passwords) {
		metrics.ImportFailuresTotal.Inc()
		return ComposeBadRequest()
	}

	available := h.store.Capacity() - h.store.Size()
	if len(body.Keystores) > available {
		metrics.ImportFailuresTotal.Inc()
		return ComposeBadRequest()
	}

	secrets := make([][32]byte, 0, len(body.Keystores))
	for i, ksJSON := range body.Keystores {
		ks, err := eip2335.ParseEncryptedKeystore([]byte(ksJSON))
		if err != nil {
			zeroizeAll(secrets)
			metrics.ImportFailuresTotal.Inc()
			return ComposeBadRequest()
		}

		password := []byte(body.Passwords[i])
		secret, err := eip2335.Decrypt(ks, password, h.limits)
		cryptoutils.Zero(password)
		if err != nil {
			zeroizeAll(secrets)
			metrics.ImportFailuresTotal.Inc()
			return ComposeBadRequest()
		}

		if h.store.HasSecret(secret) || batchContains(secrets, secret) {
			cryptoutils.Zero(secret[:])
			zeroizeAll(secrets)
			metrics.ImportFailuresTotal.Inc()
			return ComposeBadRequest()
		}

		// A decrypted-but-out-of-range scalar is rejected here, before any
		// store mutation, so the commit loop below can never fail partway
		// through an already-validated batch.
		if _, err := bls.SecretKeyFromBytes(secret); err != nil {
			cryptoutils.Zero(secret[:])
			zeroizeAll(secrets)
			metrics.ImportFailuresTotal.Inc()
			return ComposeBadRequest()
		}
		secrets = append(secrets, secret)
	}

	for _, secret := range secrets {
		if _, err := h.store.InsertFromSecret(secret); err != nil {
			h.log.Error("insert failed after batch validation passed", "err", err)
			zeroizeAll(secrets)
			metrics.ImportFailuresTotal.Inc()
			return ComposeBadRequest()
		}
	}
	zeroizeAll(secrets)
	metrics.KeystoreSize.Set(float64(h.store.Size()))

	return ComposeListKeys(h.store.PublicKeys())
}

func batchContains(secrets [][32]byte, secret [32]byte) bool {
	for _, s := range secrets {
		if cryptoutils.ConstantTimeEqual(s[:], secret[:]) {
			return true
		}
	}
	return false
}

func zeroizeAll(secrets [][32]byte) {
	for i := range secrets {
		cryptoutils.Zero(secrets[i][:])
	}
}
