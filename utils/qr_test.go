package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQRCodePNG(t *testing.T) {
	png, err := QRCodePNG("otpauth://totp/Test:admin@storypixie.app?secret=JBSWY3DPEHPK3PXP", 0)
	require.NoError(t, err)

	assert.True(t, len(png) > 8)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}

func TestQRCodeDataURI(t *testing.T) {
	uri, err := QRCodeDataURI("hello", 128)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
}

func TestQRCodeEmptyContent(t *testing.T) {
	_, err := QRCodePNG("   ", 128)
	assert.ErrorIs(t, err, ErrEmptyQRContent)

	_, err = QRCodeDataURI("", 128)
	assert.ErrorIs(t, err, ErrEmptyQRContent)
}
