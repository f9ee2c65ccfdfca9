// Package binio provides primitive read/write helpers layered over io.Reader
// and io.Writer: null-terminated strings and base-128 compressed integers.
package binio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// Primitive encoding errors.
var (
	ErrInvalidUTF8           = errors.New("string is not valid UTF-8")
	ErrEmbeddedNull          = errors.New("string contains a null byte")
	ErrCompressedIntOverflow = errors.New("compressed integer overflows 32 bits")
)

// maxCompressedIntLen is the longest encoding of a uint32.
const maxCompressedIntLen = 5

// readByte reads a single byte, using io.ByteReader when available.
func readByte(r io.Reader) (byte, error) {
	if br, ok := r.(io.ByteReader); ok {
		return br.ReadByte()
	}
	var b [1]byte
	for {
		n, err := r.Read(b[:])
		if n == 1 {
			return b[0], nil
		}
		if err != nil {
			return 0, err
		}
	}
}

// ReadCString reads bytes up to a null terminator or the end of the stream.
// The terminator is consumed but not returned.
func ReadCString(r io.Reader) (string, error) {
	var buf []byte
	for {
		b, err := readByte(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if b == 0 {
			break
		}
		buf = append(buf, b)
	}

	if !utf8.Valid(buf) {
		return "", fmt.Errorf("%w: %q", ErrInvalidUTF8, buf)
	}
	return string(buf), nil
}

// WriteCString writes the raw bytes of s followed by a single null byte.
func WriteCString(w io.Writer, s string) error {
	if i := bytes.IndexByte([]byte(s), 0); i >= 0 {
		return fmt.Errorf("%w at index %d", ErrEmbeddedNull, i)
	}
	buf := make([]byte, len(s)+1)
	copy(buf, s)
	_, err := w.Write(buf)
	return err
}

// ReadCompressedInt decodes a little-endian base-128 integer. Each byte carries
// seven value bits; a set high bit means another byte follows.
func ReadCompressedInt(r io.Reader) (uint32, error) {
	var result uint32
	for i := 0; ; i++ {
		b, err := readByte(r)
		if err != nil {
			if err == io.EOF && i > 0 {
				return 0, io.ErrUnexpectedEOF
			}
			return 0, err
		}

		if i == maxCompressedIntLen-1 && b > 0x0f {
			// Fifth byte may only carry the top four bits.
			return 0, ErrCompressedIntOverflow
		}
		result |= uint32(b&0x7f) << (7 * i)

		if b < 0x80 {
			return result, nil
		}
	}
}

// WriteCompressedInt encodes x as a base-128 integer and returns the number of
// bytes written.
func WriteCompressedInt(w io.Writer, x uint32) (int, error) {
	var buf [maxCompressedIntLen]byte
	n := 0
	for x > 0x7f {
		buf[n] = byte(x&0x7f) | 0x80
		x >>= 7
		n++
	}
	buf[n] = byte(x)
	n++
	return w.Write(buf[:n])
}

// CompressedIntLen returns the encoded size of x in bytes.
func CompressedIntLen(x uint32) int {
	n := 1
	for x > 0x7f {
		x >>= 7
		n++
	}
	return n
}
