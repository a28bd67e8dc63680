package qrcode

import (
	"bytes"
	"image/png"
	"testing"

	"reportshare/config"

	"github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLinkURL = "https://reports.example.com/share/0190f3c2-7b1e-7c4a-9d2e-3f4a5b6c7d8e?token=abc"

func TestNewQRCodeService_ErrorCorrectionLevels(t *testing.T) {
	tests := []struct {
		level string
		want  qrcode.RecoveryLevel
	}{
		{"L", qrcode.Low},
		{"M", qrcode.Medium},
		{"Q", qrcode.High},
		{"H", qrcode.Highest},
		{"invalid", qrcode.Medium},
		{"", qrcode.Medium},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			svc := newQRCodeService(256, tt.level)
			assert.Equal(t, tt.want, svc.errorCorrectionLevel)
		})
	}
}

func TestNewQRCodeService_FromConfig(t *testing.T) {
	svc := NewQRCodeService(&config.Config{})
	require.NotNil(t, svc)

	impl, ok := svc.(*qrcodeService)
	require.True(t, ok)
	assert.Equal(t, 256, impl.size)
}

func TestQRCodeService_GenerateLinkQR(t *testing.T) {
	for _, size := range []int{128, 256, 512} {
		svc := NewQRCodeService(&config.Config{QRCode: &config.QRCodeConfig{Enabled: true, Size: size}})

		pngBytes, err := svc.GenerateLinkQR(testLinkURL)
		require.NoError(t, err)

		img, err := png.Decode(bytes.NewReader(pngBytes))
		require.NoError(t, err)
		assert.Equal(t, size, img.Bounds().Dx())
		assert.Equal(t, size, img.Bounds().Dy())
	}
}

func TestQRCodeService_GenerateLinkQR_RejectsRelativeURL(t *testing.T) {
	svc := newQRCodeService(256, "M")

	for _, link := range []string{"", "/share/abc?token=x", "share/abc", "://bad"} {
		_, err := svc.GenerateLinkQR(link)
		assert.Error(t, err, link)
	}
}
