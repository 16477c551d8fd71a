package vfs

import (
	"encoding/binary"
	"fmt"
	"io"
)

// readFixed fills buf from r or reports io.ErrUnexpectedEOF. Bytes of a
// short read are consumed from r but never decoded.
func readFixed(r io.Reader, buf []byte) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return fmt.Errorf("read %d-bit integer: %w", len(buf)*8, io.ErrUnexpectedEOF)
		}
		return fmt.Errorf("read %d-bit integer: %w", len(buf)*8, err)
	}
	return nil
}

// ReadUint16 reads two bytes from r in the given byte order.
// On error the returned value is zero and must be ignored.
func ReadUint16(r io.Reader, order binary.ByteOrder) (uint16, error) {
	var b [2]byte
	if err := readFixed(r, b[:]); err != nil {
		return 0, err
	}
	return order.Uint16(b[:]), nil
}

// ReadUint32 reads four bytes from r in the given byte order.
func ReadUint32(r io.Reader, order binary.ByteOrder) (uint32, error) {
	var b [4]byte
	if err := readFixed(r, b[:]); err != nil {
		return 0, err
	}
	return order.Uint32(b[:]), nil
}

// ReadUint64 reads eight bytes from r in the given byte order.
func ReadUint64(r io.Reader, order binary.ByteOrder) (uint64, error) {
	var b [8]byte
	if err := readFixed(r, b[:]); err != nil {
		return 0, err
	}
	return order.Uint64(b[:]), nil
}

// ReadLE16 reads a little-endian uint16.
func ReadLE16(r io.Reader) (uint16, error) { return ReadUint16(r, binary.LittleEndian) }

// ReadLE32 reads a little-endian uint32.
func ReadLE32(r io.Reader) (uint32, error) { return ReadUint32(r, binary.LittleEndian) }

// ReadLE64 reads a little-endian uint64.
func ReadLE64(r io.Reader) (uint64, error) { return ReadUint64(r, binary.LittleEndian) }

// ReadBE16 reads a big-endian uint16.
func ReadBE16(r io.Reader) (uint16, error) { return ReadUint16(r, binary.BigEndian) }

// ReadBE32 reads a big-endian uint32.
func ReadBE32(r io.Reader) (uint32, error) { return ReadUint32(r, binary.BigEndian) }

// ReadBE64 reads a big-endian uint64.
func ReadBE64(r io.Reader) (uint64, error) { return ReadUint64(r, binary.BigEndian) }
