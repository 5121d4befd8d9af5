// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

package events_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abbassi001/souk-bazaar-hub/internal/platform/events"
)

func TestRecorder_KeepsOrder(t *testing.T) {
	recorder := events.NewRecorder()
	ctx := context.Background()

	require.NoError(t, recorder.Publish(ctx, events.SignedUp, map[string]string{"email": "a@b.ma"}))
	require.NoError(t, recorder.Publish(ctx, events.CheckoutCompleted, map[string]string{"order_id": "o1"}))

	got := recorder.Events()
	require.Len(t, got, 2)
	assert.Equal(t, events.SignedUp, got[0].RoutingKey)
	assert.Equal(t, events.CheckoutCompleted, got[1].RoutingKey)
}

func TestDialAMQP_InvalidURL(t *testing.T) {
	_, err := events.DialAMQP("not-a-url", "souk.events")
	assert.Error(t, err)
}
