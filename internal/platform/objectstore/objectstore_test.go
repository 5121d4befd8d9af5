// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

package objectstore_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abbassi001/souk-bazaar-hub/internal/gateway"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/objectstore"
)

func TestPublicURL_EscapesSegments(t *testing.T) {
	got := objectstore.PublicURL("https://storage.googleapis.com/", "product-images", "seller 1/tapis été.jpg")
	assert.Equal(t, "https://storage.googleapis.com/product-images/seller%201/tapis%20%C3%A9t%C3%A9.jpg", got)
}

func TestMemory_Upload(t *testing.T) {
	store := objectstore.NewMemory("https://storage.googleapis.com", "product-images")

	publicURL, err := store.Upload(context.Background(), "s1/tajine.png", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://storage.googleapis.com/product-images/s1/tajine.png", publicURL)

	object, found := store.Get("s1/tajine.png")
	require.True(t, found)
	assert.Equal(t, "image/png", object.ContentType)
	assert.Equal(t, []byte("png-bytes"), object.Data)
}

func TestMemory_UploadCancelled(t *testing.T) {
	store := objectstore.NewMemory("https://storage.googleapis.com", "product-images")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Upload(ctx, "s1/x.png", "image/png", strings.NewReader("x"))
	assert.True(t, gateway.IsCode(err, gateway.CodeUnavailable))
}
