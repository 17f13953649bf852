package beeper

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	recordBitDepth = 16
	recordLevel    = 8000

	// WAVE_FORMAT_PCM
	wavFormatPCM = 1
)

// Recorder writes the tone state of every frame to a 16 bit mono WAV file.
type Recorder struct {
	file *os.File
	enc  *wav.Encoder
	wave square
	buf  *audio.IntBuffer
}

// NewRecorder creates path. Every recorded frame holds sampleRate/frameRate
// samples.
func NewRecorder(path string, sampleRate, frameRate int) (*Recorder, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("couldn't create the wav file: %w", err)
	}

	return &Recorder{
		file: file,
		enc:  wav.NewEncoder(file, sampleRate, recordBitDepth, 1, wavFormatPCM),
		wave: newSquare(sampleRate, ToneFrequency),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
			Data:           make([]int, sampleRate/frameRate),
			SourceBitDepth: recordBitDepth,
		},
	}, nil
}

func (r *Recorder) RecordFrame(active bool) error {
	for i := range r.buf.Data {
		if active {
			r.buf.Data[i] = r.wave.next() * recordLevel
		} else {
			r.buf.Data[i] = 0
			r.wave.phase = 0
		}
	}
	if err := r.enc.Write(r.buf); err != nil {
		return fmt.Errorf("couldn't write samples: %w", err)
	}
	return nil
}

// Close finalizes the WAV header and closes the file.
func (r *Recorder) Close() error {
	if err := r.enc.Close(); err != nil {
		r.file.Close()
		return fmt.Errorf("couldn't finish the wav file: %w", err)
	}
	return r.file.Close()
}
