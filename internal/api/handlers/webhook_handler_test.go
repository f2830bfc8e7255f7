package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendora/edge/internal/webhook"
)

type recordingRevalidator struct {
	tags  []string
	paths []string
}

func (r *recordingRevalidator) RevalidateTag(_ context.Context, tag string) error {
	r.tags = append(r.tags, tag)
	return nil
}

func (r *recordingRevalidator) RevalidatePath(_ context.Context, path string) error {
	r.paths = append(r.paths, path)
	return nil
}

func newTestWebhookHandler(t *testing.T, secret string) (*WebhookHandler, *recordingRevalidator) {
	t.Helper()

	verifier, err := webhook.NewSignatureVerifier(secret, false)
	require.NoError(t, err)

	memo := webhook.NewMemo(0)
	reval := &recordingRevalidator{}
	processor := webhook.NewProcessor(memo, webhook.NewEventLog(t.TempDir()), reval, nil)

	return NewWebhookHandler(verifier, processor, memo), reval
}

func postWebhook(handler *WebhookHandler, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "http://test/webhooks/commerce", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.Receive(rec, req)

	return rec
}

func TestWebhookHandler_Receive(t *testing.T) {
	t.Run("missing signature header returns 401", func(t *testing.T) {
		handler, reval := newTestWebhookHandler(t, "secret")

		rec := postWebhook(handler, []byte(`{"type":"order.updated","order":{"id":1}}`), nil)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, reval.tags, "nothing may be processed on auth failure")
	})

	t.Run("unconfigured secret fails closed with 401", func(t *testing.T) {
		handler, _ := newTestWebhookHandler(t, "")

		rec := postWebhook(handler, []byte(`{"type":"order.updated","order":{"id":1}}`), map[string]string{
			webhook.SignatureHeader: "shared-secret",
		})

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("order event revalidates and reports resource id", func(t *testing.T) {
		handler, reval := newTestWebhookHandler(t, "secret")

		rec := postWebhook(handler, []byte(`{"type":"order.updated","order":{"id":4521}}`), map[string]string{
			webhook.SignatureHeader: "shared-secret",
		})

		require.Equal(t, http.StatusOK, rec.Code)

		var receipt map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &receipt))

		assert.Equal(t, true, receipt["success"])
		assert.Equal(t, true, receipt["received"])
		assert.Equal(t, "order.updated", receipt["eventType"])
		assert.Equal(t, "4521", receipt["resourceId"])
		assert.Equal(t, true, receipt["revalidated"])
		assert.NotEmpty(t, receipt["eventId"])
		assert.NotContains(t, receipt, "skipped")

		assert.Contains(t, reval.tags, "orders")
		assert.Contains(t, reval.paths, "/dashboard/orders")
	})

	t.Run("duplicate delivery id is skipped", func(t *testing.T) {
		handler, reval := newTestWebhookHandler(t, "secret")
		headers := map[string]string{
			webhook.SignatureHeader: "shared-secret",
			DeliveryIDHeader:        "delivery-42",
		}
		body := []byte(`{"type":"product.updated","product":{"id":7}}`)

		first := postWebhook(handler, body, headers)
		require.Equal(t, http.StatusOK, first.Code)

		tagsAfterFirst := len(reval.tags)

		second := postWebhook(handler, body, headers)
		require.Equal(t, http.StatusOK, second.Code)

		var receipt map[string]any
		require.NoError(t, json.Unmarshal(second.Body.Bytes(), &receipt))

		assert.Equal(t, true, receipt["skipped"])
		assert.Equal(t, "product.updated", receipt["eventType"])
		assert.NotContains(t, receipt, "eventId")
		assert.NotContains(t, receipt, "revalidated")

		assert.Len(t, reval.tags, tagsAfterFirst, "duplicate must not re-invalidate")
	})

	t.Run("malformed payload returns 500", func(t *testing.T) {
		handler, _ := newTestWebhookHandler(t, "secret")

		rec := postWebhook(handler, []byte(`{not json`), map[string]string{
			webhook.SignatureHeader: "shared-secret",
		})

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("unmapped event type succeeds without revalidation", func(t *testing.T) {
		handler, reval := newTestWebhookHandler(t, "secret")

		rec := postWebhook(handler, []byte(`{"type":"refund.issued","id":9}`), map[string]string{
			webhook.SignatureHeader: "shared-secret",
		})

		require.Equal(t, http.StatusOK, rec.Code)

		var receipt map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &receipt))

		assert.Equal(t, true, receipt["success"])
		assert.Equal(t, false, receipt["revalidated"])
		assert.Empty(t, reval.tags)
		assert.Empty(t, reval.paths)
	})
}

func TestWebhookHandler_Status(t *testing.T) {
	handler, _ := newTestWebhookHandler(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "http://test/webhooks/commerce", nil)
	rec := httptest.NewRecorder()
	handler.Status(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var status webhookStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))

	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "presence", status.SignatureMode)
	assert.Contains(t, status.SupportedEventTypes, "order.updated")
	assert.Len(t, status.SupportedEventTypes, 11)
	assert.Equal(t, 0, status.MemoEntries)
}
