package rpc

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer is the narrow signing capability the façade's server-held test
// keys need (spec §4.5: "the core only needs a signing capability, defined
// abstractly"). It is deliberately independent of any particular wallet's
// custody model — HSM-backed implementations can satisfy the same
// interface without this package knowing about them.
type Signer interface {
	Address() string
	Sign(digest []byte) (signature []byte, err error)
}

// ECDSASigner signs with a raw secp256k1 private key held in process
// memory: the solver's own key, loaded from SOLVER_PRIVATE_KEY as 64-char
// hex and used by the engine (and so by `/intent/execute`), and the owner
// keys that the façade's test-path `/intent/create` and `/intent/cancel`
// endpoints take from the request body.
type ECDSASigner struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

// NewECDSASigner parses a hex-encoded (optionally 0x-prefixed) private key.
func NewECDSASigner(hexKey string) (*ECDSASigner, error) {
	if len(hexKey) >= 2 && hexKey[:2] == "0x" {
		hexKey = hexKey[2:]
	}
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return &ECDSASigner{
		privateKey: key,
		address:    crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// Address returns the signer's on-chain address, hex-encoded.
func (s *ECDSASigner) Address() string { return s.address.Hex() }

// Sign produces a raw secp256k1 signature over digest, with V normalised
// to 27/28 the way the teacher's EIP-712 path does for its signatures.
// digest must be exactly 32 bytes (go-ethereum's crypto.Sign contract) —
// callers sign transaction bytes of arbitrary length and must hash them
// with TxDigest first.
func (s *ECDSASigner) Sign(digest []byte) ([]byte, error) {
	sig, err := crypto.Sign(digest, s.privateKey)
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}
	if sig[64] < 27 {
		sig[64] += 27
	}
	return sig, nil
}

// TxDigest hashes arbitrary-length serialized transaction bytes down to
// the 32-byte digest Sign requires. Every production signing call site
// (settlement, cleanup, owner-cancel, façade test-path submission) must
// route built transaction bytes through this before calling Sign.
func TxDigest(txBytes []byte) []byte {
	return crypto.Keccak256(txBytes)
}
