package audio

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"
	"github.com/jscyril/musicvfs/internal/vfs"
	playerrors "github.com/jscyril/musicvfs/pkg/errors"
)

// SupportedFormats returns list of supported audio formats
func SupportedFormats() []string {
	return []string{".mp3", ".wav", ".flac"}
}

// IsSupported checks if a file format is supported
func IsSupported(filePath string) bool {
	return formatFromExt(filePath) != FormatUnknown
}

func formatFromExt(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp3":
		return FormatMP3
	case ".wav":
		return FormatWAV
	case ".flac":
		return FormatFLAC
	}
	return FormatUnknown
}

// DetectFormat sniffs r and rewinds it. When the leading bytes are not
// recognised the extension of name decides.
func DetectFormat(r io.ReadSeeker, name string) (Format, error) {
	format, sniffErr := Sniff(r)
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return FormatUnknown, fmt.Errorf("rewind after sniff: %w", err)
	}
	if sniffErr == nil {
		return format, nil
	}
	if format = formatFromExt(name); format != FormatUnknown {
		return format, nil
	}
	return FormatUnknown, fmt.Errorf("%w: %s", playerrors.ErrInvalidFormat, filepath.Ext(name))
}

// DecodeAudio decodes an audio stream. The decoder is chosen from the
// stream's leading bytes, falling back to the extension of name. The
// returned streamer owns r.
func DecodeAudio(r io.ReadSeekCloser, name string) (beep.StreamSeekCloser, beep.Format, error) {
	format, err := DetectFormat(r, name)
	if err != nil {
		return nil, beep.Format{}, err
	}

	switch format {
	case FormatMP3:
		return mp3.Decode(r)
	case FormatWAV:
		return wav.Decode(r)
	case FormatFLAC:
		return flac.Decode(r)
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %s", playerrors.ErrInvalidFormat, name)
	}
}

// Probe reads stream parameters for the resource at uri. WAV and FLAC
// are answered from their headers; anything else is decoded to find its
// length.
func Probe(reg *vfs.Registry, uri string) (Info, error) {
	rs, err := reg.OpenSeekable(uri)
	if err != nil {
		return Info{}, playerrors.NewPlayerError("open", uri, err)
	}
	defer rs.Close()

	info, err := ProbeStream(rs, uri)
	if err != nil {
		return Info{}, playerrors.NewPlayerError("probe", uri, err)
	}
	return info, nil
}

// ProbeStream is Probe for an already open stream positioned at its
// start. rs is left open.
func ProbeStream(rs io.ReadSeeker, name string) (Info, error) {
	format, err := DetectFormat(rs, name)
	if err != nil {
		return Info{}, err
	}

	switch format {
	case FormatWAV:
		return ReadWAVInfo(rs)
	case FormatFLAC:
		return ReadFLACInfo(rs)
	}

	streamer, f, err := DecodeAudio(keepOpen{rs}, name)
	if err != nil {
		return Info{}, err
	}
	defer streamer.Close()

	info := Info{
		Format:        format,
		SampleRate:    int(f.SampleRate),
		Channels:      f.NumChannels,
		BitsPerSample: f.Precision * 8,
	}
	if n := streamer.Len(); n > 0 {
		info.TotalSamples = uint64(n)
		info.Duration = f.SampleRate.D(n)
	}
	return info, nil
}

// keepOpen hides Close from decoders that would otherwise close the
// caller's stream.
type keepOpen struct {
	io.ReadSeeker
}

func (keepOpen) Close() error { return nil }
