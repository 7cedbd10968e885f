// Package share builds the token-bearing report links handed to engineers
// and renders them as QR codes.
package share

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// ReportLink builds the public submission link for a report token.
func ReportLink(base, token string) string {
	return fmt.Sprintf("%s/report?token=%s", strings.TrimRight(base, "/"), url.QueryEscape(token))
}

// QRPNG encodes a link as a 256px PNG.
func QRPNG(link string) ([]byte, error) {
	return qrcode.Encode(link, qrcode.Medium, 256)
}

// WriteQR writes the QR PNG for a link to path.
func WriteQR(link, path string) error {
	png, err := QRPNG(link)
	if err != nil {
		return err
	}
	return os.WriteFile(path, png, 0o644)
}
