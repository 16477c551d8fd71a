package audio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/jscyril/musicvfs/internal/vfs"
	playerrors "github.com/jscyril/musicvfs/pkg/errors"
)

// Format identifies an audio container.
type Format string

const (
	FormatUnknown Format = ""
	FormatWAV     Format = "wav"
	FormatFLAC    Format = "flac"
	FormatMP3     Format = "mp3"
)

// Four-character codes, read big-endian so they compare as written.
const (
	fourccRIFF = 0x52494646 // "RIFF"
	fourccRF64 = 0x52463634 // "RF64"
	fourccWAVE = 0x57415645 // "WAVE"
	fourccFmt  = 0x666d7420 // "fmt "
	fourccData = 0x64617461 // "data"
	fourccDS64 = 0x64733634 // "ds64"
	fourccFLAC = 0x664c6143 // "fLaC"

	id3Magic      = 0x494433 // "ID3"
	mpegSyncMask  = 0xffe0
	rf64SizeToken = 0xffffffff
)

// Info describes the stream parameters found in a header.
type Info struct {
	Format        Format
	SampleRate    int
	Channels      int
	BitsPerSample int
	TotalSamples  uint64
	Duration      time.Duration
}

// maxDurationSecs is the largest whole-second count that leaves room
// for a sub-second remainder in a time.Duration.
const maxDurationSecs = math.MaxInt64/int64(time.Second) - 1

// setDuration derives Duration from TotalSamples, saturating at the
// largest representable Duration.
func (i *Info) setDuration() {
	if i.SampleRate <= 0 {
		return
	}
	rate := uint64(i.SampleRate)
	secs := i.TotalSamples / rate
	if secs > uint64(maxDurationSecs) {
		i.Duration = time.Duration(math.MaxInt64)
		return
	}
	rem := i.TotalSamples % rate
	i.Duration = time.Duration(secs)*time.Second + time.Duration(rem)*time.Second/time.Duration(rate)
}

// Sniff identifies the container from the leading bytes of r.
func Sniff(r io.Reader) (Format, error) {
	magic, err := vfs.ReadBE32(r)
	if err != nil {
		return FormatUnknown, fmt.Errorf("%w: %w", playerrors.ErrInvalidFormat, err)
	}

	switch {
	case magic == fourccRIFF || magic == fourccRF64:
		if _, err := vfs.ReadLE32(r); err != nil {
			return FormatUnknown, fmt.Errorf("%w: %w", playerrors.ErrInvalidFormat, err)
		}
		form, err := vfs.ReadBE32(r)
		if err != nil || form != fourccWAVE {
			return FormatUnknown, playerrors.ErrInvalidFormat
		}
		return FormatWAV, nil
	case magic == fourccFLAC:
		return FormatFLAC, nil
	case magic>>8 == id3Magic:
		return FormatMP3, nil
	case uint16(magic>>16)&mpegSyncMask == mpegSyncMask:
		return FormatMP3, nil
	}
	return FormatUnknown, playerrors.ErrInvalidFormat
}

// ReadWAVInfo parses a RIFF/WAVE or RF64 header from the start of r and
// stops at the data chunk.
func ReadWAVInfo(r io.Reader) (Info, error) {
	info := Info{Format: FormatWAV}

	magic, err := vfs.ReadBE32(r)
	if err != nil {
		return info, err
	}
	if magic != fourccRIFF && magic != fourccRF64 {
		return info, playerrors.ErrInvalidFormat
	}
	if _, err := vfs.ReadLE32(r); err != nil {
		return info, err
	}
	if form, err := vfs.ReadBE32(r); err != nil {
		return info, err
	} else if form != fourccWAVE {
		return info, playerrors.ErrInvalidFormat
	}

	var (
		blockAlign uint16
		ds64Data   uint64
		haveFmt    bool
	)
	for {
		id, err := vfs.ReadBE32(r)
		if err != nil {
			return info, fmt.Errorf("%w: no data chunk: %w", playerrors.ErrMalformedHeader, err)
		}
		size, err := vfs.ReadLE32(r)
		if err != nil {
			return info, err
		}

		switch id {
		case fourccDS64:
			if size < 24 {
				return info, fmt.Errorf("%w: ds64 chunk of %d bytes", playerrors.ErrMalformedHeader, size)
			}
			// riff size, data size, sample count, then a table we skip
			if _, err := vfs.ReadLE64(r); err != nil {
				return info, err
			}
			if ds64Data, err = vfs.ReadLE64(r); err != nil {
				return info, err
			}
			if _, err := vfs.ReadLE64(r); err != nil {
				return info, err
			}
			if err := skip(r, int64(size)-24); err != nil {
				return info, err
			}

		case fourccFmt:
			if size < 16 {
				return info, fmt.Errorf("%w: fmt chunk of %d bytes", playerrors.ErrMalformedHeader, size)
			}
			if _, err := vfs.ReadLE16(r); err != nil { // format tag
				return info, err
			}
			channels, err := vfs.ReadLE16(r)
			if err != nil {
				return info, err
			}
			rate, err := vfs.ReadLE32(r)
			if err != nil {
				return info, err
			}
			if _, err := vfs.ReadLE32(r); err != nil { // byte rate
				return info, err
			}
			if blockAlign, err = vfs.ReadLE16(r); err != nil {
				return info, err
			}
			bits, err := vfs.ReadLE16(r)
			if err != nil {
				return info, err
			}
			info.Channels = int(channels)
			info.SampleRate = int(rate)
			info.BitsPerSample = int(bits)
			haveFmt = true
			if err := skip(r, int64(size)-16+int64(size&1)); err != nil {
				return info, err
			}

		case fourccData:
			if !haveFmt || blockAlign == 0 {
				return info, fmt.Errorf("%w: data before fmt", playerrors.ErrMalformedHeader)
			}
			dataSize := uint64(size)
			if size == rf64SizeToken && ds64Data > 0 {
				dataSize = ds64Data
			}
			info.TotalSamples = dataSize / uint64(blockAlign)
			info.setDuration()
			return info, nil

		default:
			if err := skip(r, int64(size)+int64(size&1)); err != nil {
				return info, err
			}
		}
	}
}

// ReadFLACInfo parses the STREAMINFO block that must follow the "fLaC"
// marker.
func ReadFLACInfo(r io.Reader) (Info, error) {
	info := Info{Format: FormatFLAC}

	magic, err := vfs.ReadBE32(r)
	if err != nil {
		return info, err
	}
	if magic != fourccFLAC {
		return info, playerrors.ErrInvalidFormat
	}

	header, err := vfs.ReadBE32(r)
	if err != nil {
		return info, err
	}
	if blockType := (header >> 24) & 0x7f; blockType != 0 {
		return info, fmt.Errorf("%w: first metadata block has type %d", playerrors.ErrMalformedHeader, blockType)
	}
	if length := header & 0xffffff; length < 34 {
		return info, fmt.Errorf("%w: STREAMINFO of %d bytes", playerrors.ErrMalformedHeader, length)
	}

	// min/max block size, then 24-bit min/max frame sizes
	if _, err := vfs.ReadBE16(r); err != nil {
		return info, err
	}
	if _, err := vfs.ReadBE16(r); err != nil {
		return info, err
	}
	if err := skip(r, 6); err != nil {
		return info, err
	}

	// rate:20 channels-1:3 bps-1:5 total samples:36
	packed, err := vfs.ReadBE64(r)
	if err != nil {
		return info, err
	}
	info.SampleRate = int(packed >> 44)
	info.Channels = int((packed>>41)&0x7) + 1
	info.BitsPerSample = int((packed>>36)&0x1f) + 1
	info.TotalSamples = packed & 0xfffffffff
	if info.SampleRate == 0 {
		return info, fmt.Errorf("%w: zero sample rate", playerrors.ErrMalformedHeader)
	}
	info.setDuration()
	return info, nil
}

func skip(r io.Reader, n int64) error {
	if n <= 0 {
		return nil
	}
	if s, ok := r.(io.Seeker); ok {
		if _, err := s.Seek(n, io.SeekCurrent); err == nil {
			return nil
		} else if !errors.Is(err, vfs.ErrNotSeekable) {
			return err
		}
	}
	_, err := io.CopyN(io.Discard, r, n)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}
