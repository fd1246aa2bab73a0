package qrcode

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

// QRService renders the shareable event link as a PNG for printed table
// cards.
type QRService struct {
	baseURL string
}

func NewQRService(baseURL string) *QRService {
	return &QRService{baseURL: baseURL}
}

func (s *QRService) GenerateEventQR(accessCode string, size int) ([]byte, error) {
	png, err := qrcode.Encode(s.baseURL+accessCode, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	return png, nil
}
