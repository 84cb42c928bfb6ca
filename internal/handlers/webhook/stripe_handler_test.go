package webhook

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"contenthub-service/internal/domain/billing"
	xerrors "contenthub-service/internal/pkg/errors"
	"contenthub-service/internal/service/webhook"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type scripted struct {
	outcome   webhook.Outcome
	err       error
	payload   string
	signature string
}

func (s *scripted) Handle(_ context.Context, payload []byte, signature string) (webhook.Outcome, error) {
	s.payload = string(payload)
	s.signature = signature
	return s.outcome, s.err
}

func post(rec Reconciler) *httptest.ResponseRecorder {
	return postBody(rec, `{"id":"evt_1"}`)
}

func postBody(rec Reconciler, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/webhook/stripe/", NewStripeHandler(rec, zap.NewNop()).Handle)

	req := httptest.NewRequest(http.MethodPost, "/webhook/stripe/", bytes.NewBufferString(body))
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestStripeHandler(t *testing.T) {
	rec := &scripted{outcome: webhook.OutcomeProcessed}
	w := post(rec)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"detail":"Webhook received.","outcome":"processed"}`, w.Body.String())
	assert.Equal(t, `{"id":"evt_1"}`, rec.payload)
	assert.Equal(t, "t=1,v1=abc", rec.signature)

	w = post(&scripted{err: xerrors.WithDetail(billing.ErrInvalidSignature, "Invalid signature.")})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"detail":"Invalid signature."}`, w.Body.String())

	w = post(&scripted{err: xerrors.NewBillingError("get_customer", "No such customer", nil)})
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w = post(&scripted{outcome: webhook.OutcomeIgnored})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ignored"`)
}

func TestStripeHandler_PayloadSize(t *testing.T) {
	rec := &scripted{outcome: webhook.OutcomeProcessed}
	w := postBody(rec, strings.Repeat("x", maxPayloadBytes+1))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.JSONEq(t, `{"detail":"Payload too large."}`, w.Body.String())
	assert.Empty(t, rec.payload)

	w = postBody(rec, strings.Repeat("x", maxPayloadBytes))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, rec.payload, maxPayloadBytes)
}
