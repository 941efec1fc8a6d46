package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderRecordKeepsUnlistedGatewayFields(t *testing.T) {
	body := `{"id":"order_1","entity":"order","amount":5000,"currency":"INR","partial_payment":false,"first_payment_min_amount":null}`

	var order OrderRecord
	require.NoError(t, json.Unmarshal([]byte(body), &order))
	assert.Equal(t, "order_1", order.ID)
	assert.Equal(t, int64(5000), order.Amount)

	out, err := json.Marshal(order)
	require.NoError(t, err)
	assert.JSONEq(t, body, string(out))

	var replayed OrderRecord
	require.NoError(t, json.Unmarshal(out, &replayed))
	again, err := json.Marshal(&replayed)
	require.NoError(t, err)
	assert.JSONEq(t, body, string(again))
}

func TestOrderRecordBuiltLocallyMarshalsFields(t *testing.T) {
	out, err := json.Marshal(OrderRecord{ID: "order_2", Amount: 100, Currency: "INR", Notes: map[string]string{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"order_2","amount":100,"amount_paid":0,"amount_due":0,"currency":"INR",
		"receipt":"","offer_id":null,"attempts":0,"notes":{}}`, string(out))
}
