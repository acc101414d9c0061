package storage

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPNG(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.NRGBA{R: 200, A: 255})
	}
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf
}

func TestPrepareImage(t *testing.T) {
	t.Run("wide image is resized", func(t *testing.T) {
		buf, ct, err := PrepareImage(testPNG(t, 1200, 600), "image/jpeg", 600)
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", ct)

		out, err := imaging.Decode(buf)
		require.NoError(t, err)
		assert.Equal(t, 600, out.Bounds().Dx())
		assert.Equal(t, 300, out.Bounds().Dy())
	})

	t.Run("narrow png keeps size and format", func(t *testing.T) {
		buf, ct, err := PrepareImage(testPNG(t, 100, 50), "image/png", 600)
		require.NoError(t, err)
		assert.Equal(t, "image/png", ct)

		out, err := png.Decode(buf)
		require.NoError(t, err)
		assert.Equal(t, 100, out.Bounds().Dx())
	})

	t.Run("not an image", func(t *testing.T) {
		_, _, err := PrepareImage(strings.NewReader("hello"), "image/png", 600)
		assert.Error(t, err)
	})
}

func TestObjectName(t *testing.T) {
	name := objectName("/products/", "image/png")
	assert.True(t, strings.HasPrefix(name, "products/"))
	assert.True(t, strings.HasSuffix(name, ".png"))
	assert.NotEqual(t, name, objectName("products", "image/png"))

	assert.True(t, strings.HasPrefix(objectName("", "image/jpeg"), "misc/"))
	assert.True(t, strings.HasSuffix(objectName("x", "application/octet-stream"), ".jpeg"))
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example/a.png", publicURL("https://cdn.example/", "https://fallback", "a.png"))
	assert.Equal(t, "https://fallback/a.png", publicURL("", "https://fallback", "a.png"))
}
