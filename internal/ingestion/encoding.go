package ingestion

import (
	"golang.org/x/text/encoding/unicode"
)

// Encoding is the detected character encoding of an input file.
type Encoding string

const (
	EncodingUTF8    Encoding = "utf-8"
	EncodingUTF16LE Encoding = "utf-16le"
	EncodingUTF16BE Encoding = "utf-16be"
)

// DecodeBytes classifies the raw bytes of an export file as UTF-16LE,
// UTF-16BE or UTF-8 and returns the decoded text. Google Ads CSV exports
// routinely ship as UTF-16LE with a byte-order mark; everything else in
// practice is UTF-8.
//
// The function never fails: if a UTF-16 payload is malformed the decoder
// substitutes replacement runes and the damage surfaces as unparseable cells
// downstream, not as a fatal error for the whole file.
func DecodeBytes(raw []byte) (string, Encoding) {
	if len(raw) >= 2 {
		switch {
		case raw[0] == 0xFF && raw[1] == 0xFE:
			return decodeUTF16(raw[2:], unicode.LittleEndian), EncodingUTF16LE
		case raw[0] == 0xFE && raw[1] == 0xFF:
			return decodeUTF16(raw[2:], unicode.BigEndian), EncodingUTF16BE
		}
	}
	return string(raw), EncodingUTF8
}

func decodeUTF16(payload []byte, endian unicode.Endianness) string {
	decoder := unicode.UTF16(endian, unicode.IgnoreBOM).NewDecoder()
	// The decoder substitutes replacement runes for broken code units, so the
	// error can be ignored and partial output used as-is.
	decoded, _ := decoder.Bytes(payload)
	return string(decoded)
}
