package billing

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_test_secret"

func TestVerifySignature_Valid(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"invoice.payment_succeeded"}`)
	now := time.Now()

	header := SignatureHeader(payload, now.Unix(), testSecret)
	err := VerifySignature(payload, header, testSecret, 5*time.Minute, now)
	assert.NoError(t, err)
}

func TestVerifySignature_TamperedPayload(t *testing.T) {
	payload := []byte(`{"id":"evt_1","amount":100}`)
	now := time.Now()
	header := SignatureHeader(payload, now.Unix(), testSecret)

	tampered := []byte(`{"id":"evt_1","amount":100000}`)
	err := VerifySignature(tampered, header, testSecret, 5*time.Minute, now)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifySignature_WrongSecret(t *testing.T) {
	payload := []byte(`{}`)
	now := time.Now()
	header := SignatureHeader(payload, now.Unix(), "whsec_other")

	err := VerifySignature(payload, header, testSecret, 5*time.Minute, now)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifySignature_StaleTimestamp(t *testing.T) {
	payload := []byte(`{}`)
	now := time.Now()
	header := SignatureHeader(payload, now.Add(-10*time.Minute).Unix(), testSecret)

	err := VerifySignature(payload, header, testSecret, 5*time.Minute, now)
	assert.ErrorIs(t, err, ErrTimestampTooOld)
}

func TestVerifySignature_MissingHeader(t *testing.T) {
	err := VerifySignature([]byte(`{}`), "", testSecret, 5*time.Minute, time.Now())
	assert.ErrorIs(t, err, ErrMissingSignature)
}

func TestVerifySignature_MalformedHeader(t *testing.T) {
	for _, header := range []string{"v1=abc", "t=notanumber,v1=abc", "garbage"} {
		err := VerifySignature([]byte(`{}`), header, testSecret, 5*time.Minute, time.Now())
		assert.Error(t, err, header)
	}
}

func TestVerifySignature_MultipleV1Entries(t *testing.T) {
	// Secret rotation: the provider sends signatures for old and new secret.
	payload := []byte(`{"id":"evt_2"}`)
	now := time.Now()
	good := ComputeSignature(payload, now.Unix(), testSecret)
	header := "t=" + strconv.FormatInt(now.Unix(), 10) + ",v1=deadbeef,v1=" + good

	err := VerifySignature(payload, header, testSecret, 5*time.Minute, now)
	assert.NoError(t, err)
}

func TestParseEvent(t *testing.T) {
	payload := []byte(`{
		"id": "evt_123",
		"type": "checkout.session.completed",
		"created": 1710000000,
		"data": {"object": {
			"id": "cs_1",
			"customer": "cus_9",
			"amount_total": 4900,
			"currency": "usd",
			"mode": "subscription",
			"metadata": {"user_id": "u-1"}
		}}
	}`)

	event, err := ParseEvent(payload)
	require.NoError(t, err)
	assert.Equal(t, "evt_123", event.ID)
	assert.Equal(t, EventCheckoutCompleted, event.Type)
	assert.Equal(t, "cus_9", event.Data.Object.CustomerID)
	assert.Equal(t, 49.00, event.AmountDollars())
	assert.Equal(t, "u-1", event.Data.Object.Metadata["user_id"])
}

func TestParseEvent_MissingFields(t *testing.T) {
	_, err := ParseEvent([]byte(`{"data":{}}`))
	assert.Error(t, err)

	_, err = ParseEvent([]byte(`not json`))
	assert.Error(t, err)
}
