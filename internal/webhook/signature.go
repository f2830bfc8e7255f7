package webhook

import (
	"errors"
	"fmt"
	"net/http"

	standardwebhooks "github.com/standard-webhooks/standard-webhooks/libraries/go"
)

// SignatureHeader is the legacy shared-secret signature header the upstream
// platform sends on every delivery.
const SignatureHeader = "X-Commerce-Signature"

// Authorization failures. Both fail closed: nothing is processed or logged.
var (
	ErrSecretNotConfigured = errors.New("webhook secret not configured")
	ErrMissingSignature    = errors.New("missing webhook signature header")
)

// SignatureVerifier authenticates inbound deliveries.
//
// Default mode checks only that a signature header is present, matching the
// upstream platform, which sends the shared secret but no payload HMAC.
// Strict mode verifies Standard Webhooks HMAC signatures instead and should
// be enabled whenever the upstream supports signing.
type SignatureVerifier struct {
	secret string
	strict bool
	wh     *standardwebhooks.Webhook
}

// NewSignatureVerifier creates a verifier. In strict mode the secret must be a
// valid Standard Webhooks signing key.
func NewSignatureVerifier(secret string, strict bool) (*SignatureVerifier, error) {
	v := &SignatureVerifier{secret: secret, strict: strict}

	if strict && secret != "" {
		wh, err := standardwebhooks.NewWebhook(secret)
		if err != nil {
			return nil, fmt.Errorf("create signature verifier: %w", err)
		}

		v.wh = wh
	}

	return v, nil
}

// Strict reports whether HMAC verification is enabled.
func (v *SignatureVerifier) Strict() bool { return v.strict }

// Verify authenticates one delivery. It fails closed when no secret is
// configured or no signature header is present.
func (v *SignatureVerifier) Verify(headers http.Header, payload []byte) error {
	if v.secret == "" {
		return ErrSecretNotConfigured
	}

	if v.strict {
		if err := v.wh.Verify(payload, headers); err != nil {
			return fmt.Errorf("verify signature: %w", err)
		}

		return nil
	}

	if headers.Get(SignatureHeader) == "" && headers.Get(standardwebhooks.HeaderWebhookSignature) == "" {
		return ErrMissingSignature
	}

	return nil
}
