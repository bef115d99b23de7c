package service

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func gifBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewPaletted(image.Rect(0, 0, w, h), color.Palette{color.Black, color.White})
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, img, nil))
	return buf.Bytes()
}

// withDeclaredSize rewrites the IHDR dimensions of a PNG without touching its
// pixel data.
func withDeclaredSize(t *testing.T, data []byte, w, h uint32) []byte {
	t.Helper()
	out := append([]byte(nil), data...)
	require.Equal(t, "IHDR", string(out[12:16]))
	binary.BigEndian.PutUint32(out[16:20], w)
	binary.BigEndian.PutUint32(out[20:24], h)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func TestProcessImage(t *testing.T) {
	t.Run("should keep small images untouched", func(t *testing.T) {
		data := pngBytes(t, 20, 10)
		out, err := ProcessImage(data, 100)
		require.NoError(t, err)
		assert.Equal(t, "image/png", out.ContentType)
		assert.Equal(t, data, out.Data)
		assert.True(t, strings.HasSuffix(out.Key(), ".png"))
		assert.True(t, strings.HasPrefix(out.Key(), "recipe-images/"))
	})

	t.Run("should downscale large images keeping aspect ratio", func(t *testing.T) {
		out, err := ProcessImage(pngBytes(t, 400, 200), 100)
		require.NoError(t, err)
		cfg, _, err := image.DecodeConfig(bytes.NewReader(out.Data))
		require.NoError(t, err)
		assert.Equal(t, 100, cfg.Width)
		assert.Equal(t, 50, cfg.Height)
	})

	t.Run("should re-encode resized gifs as png", func(t *testing.T) {
		out, err := ProcessImage(gifBytes(t, 300, 300), 150)
		require.NoError(t, err)
		assert.Equal(t, "image/png", out.ContentType)
	})

	t.Run("should reject non-images", func(t *testing.T) {
		_, err := ProcessImage([]byte("%PDF-1.4 not an image"), 100)
		assert.ErrorIs(t, err, ErrUnsupportedImage)
	})

	t.Run("should reject images declaring too many pixels", func(t *testing.T) {
		data := withDeclaredSize(t, pngBytes(t, 1, 1), 12000, 12000)
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		require.NoError(t, err)
		require.Equal(t, 12000, cfg.Width)

		out, err := ProcessImage(data, 1024)
		assert.Nil(t, out)
		assert.ErrorIs(t, err, ErrUnsupportedImage)
		assert.ErrorIs(t, err, ErrImageTooLarge)

		_, err = ProcessImage(withDeclaredSize(t, pngBytes(t, 1, 1), 50000, 50000), 0)
		assert.ErrorIs(t, err, ErrUnsupportedImage)
	})

	t.Run("should reject truncated images", func(t *testing.T) {
		data := pngBytes(t, 10, 10)
		_, err := ProcessImage(data[:20], 100)
		assert.ErrorIs(t, err, ErrUnsupportedImage)
	})
}

func TestLocalImageStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalImageStore(dir, "/uploads/", zaptest.NewLogger(t))
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("should write and delete files", func(t *testing.T) {
		url, err := store.Upload(ctx, "recipe-images/a.png", []byte("data"), "image/png")
		require.NoError(t, err)
		assert.Equal(t, "/uploads/recipe-images/a.png", url)

		content, err := os.ReadFile(filepath.Join(dir, "recipe-images", "a.png"))
		require.NoError(t, err)
		assert.Equal(t, []byte("data"), content)

		require.NoError(t, store.Delete(ctx, url))
		_, err = os.Stat(filepath.Join(dir, "recipe-images", "a.png"))
		assert.True(t, os.IsNotExist(err))

		// Deleting twice is fine.
		assert.NoError(t, store.Delete(ctx, url))
	})

	t.Run("should ignore urls it does not own", func(t *testing.T) {
		assert.NoError(t, store.Delete(ctx, "https://cdn.example/recipe-images/a.png"))
	})

	t.Run("should refuse keys escaping the directory", func(t *testing.T) {
		_, err := store.Upload(ctx, "../escape.png", []byte("x"), "image/png")
		assert.Error(t, err)
		assert.Error(t, store.Delete(ctx, "/uploads/../../etc/passwd"))
	})
}
