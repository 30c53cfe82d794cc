package codec

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// TextEncoding selects how the characters of a string are stored. The value
// is written as the first byte of every encoded string.
type TextEncoding uint8

const (
	// EncodingDefault is stored like EncodingUnicode. On a string Type it
	// means "use the encoder's configured encoding".
	EncodingDefault TextEncoding = iota
	// EncodingASCII stores one byte per character; characters outside
	// ASCII are replaced by '?'.
	EncodingASCII
	// EncodingUnicode stores UTF-16 little-endian code units.
	EncodingUnicode
)

var utf16LE = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

func (e TextEncoding) valid() bool { return e <= EncodingUnicode }

// width is the size in bytes of one code unit.
func (e TextEncoding) width() int {
	if e == EncodingASCII {
		return 1
	}
	return 2
}

func (e TextEncoding) String() string {
	switch e {
	case EncodingDefault:
		return "Default"
	case EncodingASCII:
		return "ASCII"
	case EncodingUnicode:
		return "Unicode"
	}
	return fmt.Sprintf("TextEncoding(%d)", uint8(e))
}

// encode returns the code units of s.
func (e TextEncoding) encode(s string) ([]byte, error) {
	if e == EncodingASCII {
		b := make([]byte, 0, len(s))
		for _, r := range s {
			if r >= utf8.RuneSelf {
				r = '?'
			}
			b = append(b, byte(r))
		}
		return b, nil
	}
	return utf16LE.NewEncoder().Bytes([]byte(s))
}

func (e TextEncoding) decode(b []byte) (string, error) {
	if e == EncodingASCII {
		for i, c := range b {
			if c >= utf8.RuneSelf {
				b[i] = '?'
			}
		}
		return string(b), nil
	}
	out, err := utf16LE.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// encodeString writes <encoding><int32 count><count code units>.
// Empty and whitespace-only strings are refused.
func (e *encodeState) encodeString(t *Type, v Value) error {
	s, ok := v.(String)
	if !ok {
		return mismatch(t, v)
	}
	if strings.TrimSpace(string(s)) == "" {
		return fmt.Errorf("%w: cannot encode an empty or whitespace-only string", ErrInvalidArgument)
	}

	enc := t.Encoding
	if enc == EncodingDefault {
		enc = e.opts.stringEncoding
	}
	if !enc.valid() {
		return fmt.Errorf("%w: %s", ErrUnknownEncoding, enc)
	}

	units, err := enc.encode(string(s))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	count, err := toCount(len(units) / enc.width())
	if err != nil {
		return err
	}

	_ = e.w.WriteByte(byte(enc))
	e.w.WriteInt32(count)
	e.w.WriteBytes(units)
	return e.w.Err()
}

// decodeString reads a string written by encodeString. The stream's encoding
// byte decides the code unit width, whatever t says.
func (d *decodeState) decodeString() (Value, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return nil, err
	}
	enc := TextEncoding(b)
	if !enc.valid() {
		return nil, fmt.Errorf("%w: selector 0x%02x at offset %d", ErrUnknownEncoding, b, d.r.Count()-1)
	}

	count, err := d.readCount(StringType)
	if err != nil {
		return nil, err
	}
	units := d.r.ReadBytes(count * enc.width())
	if err := d.r.Err(); err != nil {
		return nil, err
	}

	s, err := enc.decode(units)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return String(s), nil
}
