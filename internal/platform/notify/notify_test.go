// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

package notify_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abbassi001/souk-bazaar-hub/internal/platform/notify"
)

/*
TestRequestNotifier_RoutesToCollector verifies delivery to the request collector.
*/
func TestRequestNotifier_RoutesToCollector(t *testing.T) {
	ctx, collector := notify.WithCollector(context.Background())

	notify.Request.Notify(ctx, notify.Success("Added to cart", "Tapis berbère"))
	notify.Request.Notify(ctx, notify.Error("Sign in failed", ""))

	all := collector.All()
	require.Len(t, all, 2)
	assert.Equal(t, notify.CategorySuccess, all[0].Category)
	assert.Equal(t, "Tapis berbère", all[0].Description)
	assert.Equal(t, notify.CategoryError, all[1].Category)
	assert.Same(t, collector, notify.FromContext(ctx))
}

/*
TestRequestNotifier_NoCollector must not panic outside a request.
*/
func TestRequestNotifier_NoCollector(t *testing.T) {
	assert.NotPanics(t, func() {
		notify.Request.Notify(context.Background(), notify.Info("hello", ""))
	})
	assert.Nil(t, notify.FromContext(context.Background()))
}

func TestCollector_Concurrent(t *testing.T) {
	collector := &notify.Collector{}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			collector.Notify(context.Background(), notify.Info("tick", ""))
		}()
	}
	wg.Wait()

	assert.Len(t, collector.All(), 50)
}
