// Package qrcode renders share links as scannable PNG images.
package qrcode

import (
	"net/url"

	"reportshare/config"
	"reportshare/internal/domain/service"

	"github.com/pkg/errors"
	"github.com/skip2/go-qrcode"
)

type qrcodeService struct {
	size                 int
	errorCorrectionLevel qrcode.RecoveryLevel
}

// NewQRCodeService creates a QR code service from the qrcode config section
func NewQRCodeService(cfg *config.Config) service.QRCodeService {
	size, level := 0, ""
	if cfg.QRCode != nil {
		size, level = cfg.QRCode.Size, cfg.QRCode.ErrorCorrectionLevel
	}

	return newQRCodeService(size, level)
}

func newQRCodeService(size int, errorCorrectionLevel string) *qrcodeService {
	var level qrcode.RecoveryLevel
	switch errorCorrectionLevel {
	case "L":
		level = qrcode.Low
	case "Q":
		level = qrcode.High
	case "H":
		level = qrcode.Highest
	default:
		level = qrcode.Medium
	}

	if size <= 0 {
		size = 256
	}

	return &qrcodeService{
		size:                 size,
		errorCorrectionLevel: level,
	}
}

// GenerateLinkQR encodes an absolute share link URL as a PNG QR code
func (s *qrcodeService) GenerateLinkQR(linkURL string) ([]byte, error) {
	parsed, err := url.Parse(linkURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse link URL")
	}
	if !parsed.IsAbs() || parsed.Host == "" {
		return nil, errors.Errorf("link URL must be absolute: %q", linkURL)
	}

	code, err := qrcode.New(linkURL, s.errorCorrectionLevel)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create QR code")
	}

	png, err := code.PNG(s.size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to render QR code PNG")
	}

	return png, nil
}
