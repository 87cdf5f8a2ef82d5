package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type accessLevelPayload struct {
	AccessLevel string `json:"access_level" validate:"omitempty,is-access-level"`
}

type brokerPayload struct {
	Broker string `json:"broker" validate:"required,is-broker"`
}

func TestValidate_AccessLevelRule(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&accessLevelPayload{AccessLevel: "full_access"}))
	assert.NoError(t, v.Validate(&accessLevelPayload{AccessLevel: "dashboard_only"}))
	assert.NoError(t, v.Validate(&accessLevelPayload{AccessLevel: "none"}))

	// Presence is 'required's job, not the status rule's.
	assert.NoError(t, v.Validate(&accessLevelPayload{}))

	err := v.Validate(&accessLevelPayload{AccessLevel: "vip"})
	require.Error(t, err)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Errors, "access_level")
}

func TestValidate_BrokerRule(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&brokerPayload{Broker: "tradovate"}))
	assert.NoError(t, v.Validate(&brokerPayload{Broker: "ninjatrader"}))
	assert.Error(t, v.Validate(&brokerPayload{Broker: "robinhood"}))
	assert.Error(t, v.Validate(&brokerPayload{}))
}

func TestValidate_ReportsJSONFieldNames(t *testing.T) {
	v := New()

	payload := struct {
		ContactEmail string `json:"contact_email" validate:"required,email"`
	}{ContactEmail: "not-an-email"}

	err := v.Validate(&payload)
	require.Error(t, err)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Errors, "contact_email")
	assert.Equal(t, "Must be a valid email address", vErr.Errors["contact_email"])
}
