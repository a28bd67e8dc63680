package service

// QRCodeService renders share links as QR code images
type QRCodeService interface {
	// GenerateLinkQR returns a PNG QR code encoding the given share link URL
	GenerateLinkQR(linkURL string) ([]byte, error)
}
