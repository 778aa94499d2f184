package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeImage(t *testing.T) {
	t.Run("nil image falls back to default", func(t *testing.T) {
		assert.Equal(t, DefaultImage, NormalizeImage(nil))
	})

	t.Run("blank URL falls back to default", func(t *testing.T) {
		assert.Equal(t, DefaultImage, NormalizeImage(&Image{URL: "   ", Filename: "photo"}))
	})

	t.Run("empty struct falls back to default", func(t *testing.T) {
		assert.Equal(t, DefaultImage, NormalizeImage(&Image{}))
	})

	t.Run("valid image passes through", func(t *testing.T) {
		img := Image{URL: "https://example.com/cabin.jpg", Filename: "cabin"}
		assert.Equal(t, img, NormalizeImage(&img))
	})

	t.Run("missing filename gets default label", func(t *testing.T) {
		got := NormalizeImage(&Image{URL: "https://example.com/cabin.jpg"})
		assert.Equal(t, "https://example.com/cabin.jpg", got.URL)
		assert.Equal(t, "default", got.Filename)
	})
}

func TestValidCategory(t *testing.T) {
	for _, c := range Categories {
		assert.True(t, ValidCategory(c), c)
	}
	assert.False(t, ValidCategory(""))
	assert.False(t, ValidCategory("beachfront"))
	assert.False(t, ValidCategory("Mountains"))
}
