// Package codec converts between raw file bytes and the base64 text form
// stored in upload history.
package codec

import (
	"encoding/base64"
	"strings"

	"github.com/ukaji3/sheetchart-go/pkg/sheetchart"
)

// Encode returns the padded standard base64 encoding of data.
func Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// Decode reverses Encode. Malformed alphabet or padding yields ErrDecode.
func Decode(payload string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, sheetchart.DecodeErrorf("%v", err)
	}
	return data, nil
}

// DecodedLen returns the exact number of bytes payload decodes to, without
// decoding it. Trailing "=" padding is not counted.
func DecodedLen(payload string) int {
	n := base64.StdEncoding.DecodedLen(len(payload))
	return n - (len(payload) - len(strings.TrimRight(payload, "=")))
}

// StripDataURL removes a "data:<mime>;base64," prefix if present.
func StripDataURL(s string) string {
	if !strings.HasPrefix(s, "data:") {
		return s
	}
	if i := strings.IndexByte(s, ','); i >= 0 {
		return s[i+1:]
	}
	return s
}

// DecodeDataURL decodes either a bare payload or a base64 data URL.
func DecodeDataURL(s string) ([]byte, error) {
	return Decode(StripDataURL(s))
}
