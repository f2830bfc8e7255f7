package webhook

import (
	"errors"
	"net/http"
	"testing"
)

func TestSignatureVerifier_presence_mode(t *testing.T) {
	verifier, err := NewSignatureVerifier("shared-secret", false)
	if err != nil {
		t.Fatalf("NewSignatureVerifier() error = %v", err)
	}

	t.Run("accepts any non-empty signature header", func(t *testing.T) {
		headers := http.Header{}
		headers.Set(SignatureHeader, "anything")

		if err := verifier.Verify(headers, []byte(`{}`)); err != nil {
			t.Errorf("Verify() error = %v, want nil", err)
		}
	})

	t.Run("rejects missing header", func(t *testing.T) {
		if err := verifier.Verify(http.Header{}, []byte(`{}`)); !errors.Is(err, ErrMissingSignature) {
			t.Errorf("Verify() error = %v, want ErrMissingSignature", err)
		}
	})
}

func TestSignatureVerifier_fails_closed_without_secret(t *testing.T) {
	verifier, err := NewSignatureVerifier("", false)
	if err != nil {
		t.Fatalf("NewSignatureVerifier() error = %v", err)
	}

	headers := http.Header{}
	headers.Set(SignatureHeader, "anything")

	if err := verifier.Verify(headers, []byte(`{}`)); !errors.Is(err, ErrSecretNotConfigured) {
		t.Errorf("Verify() error = %v, want ErrSecretNotConfigured", err)
	}
}

func TestSignatureVerifier_strict_mode_rejects_bad_signature(t *testing.T) {
	verifier, err := NewSignatureVerifier("whsec_dGVzdC1zaWduaW5nLWtleQ==", true)
	if err != nil {
		t.Fatalf("NewSignatureVerifier() error = %v", err)
	}

	if !verifier.Strict() {
		t.Fatal("Strict() = false, want true")
	}

	headers := http.Header{}
	headers.Set("webhook-id", "msg_1")
	headers.Set("webhook-timestamp", "1614265330")
	headers.Set("webhook-signature", "v1,bm90LXRoZS1yaWdodC1zaWduYXR1cmU=")

	if err := verifier.Verify(headers, []byte(`{}`)); err == nil {
		t.Error("Verify() error = nil, want bad HMAC rejected")
	}
}
