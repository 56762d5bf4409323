package audio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
)

// DecodeFile decodes a WAV, MP3, or OGG/Vorbis file into a mono Signal at
// AnalysisRate. Other extensions return ErrUnsupportedFormat so the caller
// can fall back to ffmpeg conversion.
func DecodeFile(path string) (*Signal, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var sig *Signal
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		sig, err = decodeWAV(f)
	case ".mp3":
		sig, err = decodeMP3(f)
	case ".ogg", ".oga":
		sig, err = decodeOGG(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	if err := sig.Validate(); err != nil {
		return nil, err
	}

	if sig.SampleRate != AnalysisRate {
		sig = &Signal{
			Samples:    Resample(sig.Samples, sig.SampleRate, AnalysisRate),
			SampleRate: AnalysisRate,
		}
	}
	return sig, nil
}

func decodeWAV(f *os.File) (*Signal, error) {
	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, ErrEmptySignal
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	bitDepth := int(decoder.BitDepth)
	if buf.SourceBitDepth > 0 {
		bitDepth = buf.SourceBitDepth
	}
	if bitDepth <= 0 {
		bitDepth = 16
	}
	scale := 1.0 / float64(int(1)<<(bitDepth-1))

	frames := len(buf.Data) / channels
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for ch := 0; ch < channels; ch++ {
			sum += float64(buf.Data[i*channels+ch]) * scale
		}
		samples[i] = sum / float64(channels)
	}

	return &Signal{Samples: samples, SampleRate: buf.Format.SampleRate}, nil
}

func decodeMP3(f *os.File) (*Signal, error) {
	decoder, err := gomp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("opening MP3 decoder: %w", err)
	}

	// go-mp3 emits 16-bit little-endian stereo PCM regardless of the source.
	raw, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("decoding MP3 data: %w", err)
	}

	const scale = 1.0 / 32768.0
	frames := len(raw) / 4
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		l := int16(uint16(raw[4*i]) | uint16(raw[4*i+1])<<8)
		r := int16(uint16(raw[4*i+2]) | uint16(raw[4*i+3])<<8)
		samples[i] = (float64(l) + float64(r)) * 0.5 * scale
	}

	return &Signal{Samples: samples, SampleRate: decoder.SampleRate()}, nil
}

func decodeOGG(f *os.File) (*Signal, error) {
	reader, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("opening OGG decoder: %w", err)
	}

	channels := reader.Channels()
	if channels < 1 {
		channels = 1
	}

	var samples []float64
	buf := make([]float32, 4096*channels)
	for {
		n, err := reader.Read(buf)
		if n > 0 {
			frames := n / channels
			for i := 0; i < frames; i++ {
				var sum float64
				for ch := 0; ch < channels; ch++ {
					sum += float64(buf[i*channels+ch])
				}
				samples = append(samples, sum/float64(channels))
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decoding OGG data: %w", err)
		}
		if n == 0 {
			break
		}
	}

	return &Signal{Samples: samples, SampleRate: reader.SampleRate()}, nil
}
