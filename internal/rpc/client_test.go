package rpc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/intent-solver/settlement/pkg/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestBuildUnsignedSignRoundTrip wires a real ECDSASigner through a real
// BuildUnsigned call against a scripted RPC node: the returned tx bytes
// are hashed with TxDigest and signed, and the signature must recover to
// the signer's own address. This is the round trip every production
// submission path (submitSignedPlan/submitSignedPTB/Cancel/signAndSubmit)
// performs, and it fails loudly if Sign is ever fed raw, un-hashed tx
// bytes again (go-ethereum's crypto.Sign requires a 32-byte digest).
func TestBuildUnsignedSignRoundTrip(t *testing.T) {
	t.Parallel()

	wantTxBytes := []byte("serialized-create-intent-transaction-bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      1,
			"result":  base64.StdEncoding.EncodeToString(wantTxBytes),
		})
	}))
	defer server.Close()

	client := New(Config{URL: server.URL}, testLogger())

	signer, err := NewECDSASigner(privateKeyOne)
	if err != nil {
		t.Fatalf("NewECDSASigner: %v", err)
	}

	plan := types.TxPlan{
		Target:    "0xpkg::intent::create_intent",
		GasBudget: 1_000_000,
	}
	txBytes, err := client.BuildUnsigned(context.Background(), plan, signer.Address())
	if err != nil {
		t.Fatalf("BuildUnsigned: %v", err)
	}
	if string(txBytes) != string(wantTxBytes) {
		t.Fatalf("txBytes = %q, want %q", txBytes, wantTxBytes)
	}

	digest := TxDigest(txBytes)
	sig, err := signer.Sign(digest)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if len(sig) != 65 {
		t.Fatalf("signature length = %d, want 65", len(sig))
	}

	raw := append([]byte(nil), sig...)
	raw[64] -= 27
	pub, err := crypto.SigToPub(digest, raw)
	if err != nil {
		t.Fatalf("SigToPub: %v", err)
	}
	if crypto.PubkeyToAddress(*pub).Hex() != signer.Address() {
		t.Errorf("recovered address %s != signer address %s", crypto.PubkeyToAddress(*pub).Hex(), signer.Address())
	}
}

// TestTxDigestProducesValidSignLength confirms TxDigest always yields the
// 32-byte digest crypto.Sign requires, regardless of input length.
func TestTxDigestProducesValidSignLength(t *testing.T) {
	t.Parallel()
	for _, n := range []int{0, 1, 31, 32, 33, 500} {
		d := TxDigest(make([]byte, n))
		if len(d) != 32 {
			t.Errorf("TxDigest(%d bytes) = %d bytes, want 32", n, len(d))
		}
	}
}
