package vfs

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

var eightBytes = []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}

func TestEndianReads_KnownSequence(t *testing.T) {
	tests := []struct {
		name string
		read func(io.Reader) (uint64, error)
		want uint64
	}{
		{"le16", widen16(ReadLE16), 0x0201},
		{"be16", widen16(ReadBE16), 0x0102},
		{"le32", widen32(ReadLE32), 0x04030201},
		{"be32", widen32(ReadBE32), 0x01020304},
		{"le64", ReadLE64, 0x0807060504030201},
		{"be64", ReadBE64, 0x0102030405060708},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.read(bytes.NewReader(eightBytes))
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestEndianReads_ShortInput(t *testing.T) {
	tests := []struct {
		name  string
		read  func(io.Reader) (uint64, error)
		avail int
	}{
		{"le16 from 1", widen16(ReadLE16), 1},
		{"be16 from 0", widen16(ReadBE16), 0},
		{"le32 from 3", widen32(ReadLE32), 3},
		{"be32 from 2", widen32(ReadBE32), 2},
		{"le64 from 7", ReadLE64, 7},
		{"be64 from 4", ReadBE64, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.read(bytes.NewReader(eightBytes[:tt.avail]))
			require.ErrorIs(t, err, io.ErrUnexpectedEOF)
		})
	}
}

func TestEndianReads_MatchManualDecoding(t *testing.T) {
	require := require.New(t)
	data := []byte{0xde, 0xad, 0xbe, 0xef, 0xca, 0xfe, 0xba, 0xbe}

	var manualBE, manualLE uint64
	for i, b := range data {
		manualBE = manualBE<<8 | uint64(b)
		manualLE |= uint64(b) << (8 * i)
	}

	be, err := ReadBE64(bytes.NewReader(data))
	require.NoError(err)
	require.Equal(manualBE, be)

	le, err := ReadLE64(bytes.NewReader(data))
	require.NoError(err)
	require.Equal(manualLE, le)
}

func TestEndianReads_AdvanceCursor(t *testing.T) {
	require := require.New(t)
	reg, mem := newMemRegistry(t)
	mem.Put("ints.bin", eightBytes)

	f := mustOpen(t, reg, "mem://ints.bin", ModeRead)
	defer f.Close()

	hi, err := ReadBE32(f)
	require.NoError(err)
	lo, err := ReadLE32(f)
	require.NoError(err)
	require.Equal(uint32(0x01020304), hi)
	require.Equal(uint32(0x08070605), lo)

	_, err = ReadBE16(f)
	require.ErrorIs(err, io.ErrUnexpectedEOF)
}

func TestReadUintWithRuntimeOrder(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		t.Run(order.String(), func(t *testing.T) {
			buf := make([]byte, 8)
			order.PutUint64(buf, 0x1122334455667788)

			got, err := ReadUint64(bytes.NewReader(buf), order)
			require.NoError(t, err)
			require.Equal(t, uint64(0x1122334455667788), got)
		})
	}
}

func widen16(fn func(io.Reader) (uint16, error)) func(io.Reader) (uint64, error) {
	return func(r io.Reader) (uint64, error) {
		v, err := fn(r)
		return uint64(v), err
	}
}

func widen32(fn func(io.Reader) (uint32, error)) func(io.Reader) (uint64, error) {
	return func(r io.Reader) (uint64, error) {
		v, err := fn(r)
		return uint64(v), err
	}
}
