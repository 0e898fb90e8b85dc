package qrcode_test

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"strings"
	"testing"

	"github.com/shandysiswandi/cybershield/internal/pkg/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const uri = "otpauth://totp/CyberShield:a@x.com?secret=JBSWY3DPEHPK3PXP&issuer=CyberShield"

func TestPNGRenderer_PNG(t *testing.T) {
	t.Parallel()

	t.Run("rejects blank content", func(t *testing.T) {
		t.Parallel()

		out, err := qrcode.NewPNGRenderer(128).PNG(" \t\n")

		require.ErrorIs(t, err, qrcode.ErrEmptyContent)
		assert.Nil(t, out)
	})

	t.Run("renders a decodable png of the requested size", func(t *testing.T) {
		t.Parallel()

		out, err := qrcode.NewPNGRenderer(128).PNG(uri)
		require.NoError(t, err)

		img, err := png.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, 128, img.Bounds().Dx())
		assert.Equal(t, 128, img.Bounds().Dy())
	})

	t.Run("falls back to default size", func(t *testing.T) {
		t.Parallel()

		out, err := qrcode.NewPNGRenderer(0).PNG(uri)
		require.NoError(t, err)

		img, err := png.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, qrcode.DefaultSize, img.Bounds().Dx())
	})
}

func TestPNGRenderer_DataURL(t *testing.T) {
	t.Parallel()

	got, err := qrcode.NewPNGRenderer(128).DataURL(uri)
	require.NoError(t, err)

	const prefix = "data:image/png;base64,"
	require.True(t, strings.HasPrefix(got, prefix))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(got, prefix))
	require.NoError(t, err)

	_, err = png.Decode(bytes.NewReader(raw))
	assert.NoError(t, err)

	_, err = qrcode.NewPNGRenderer(128).DataURL("")
	assert.ErrorIs(t, err, qrcode.ErrEmptyContent)
}
