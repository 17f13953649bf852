package beeper

import (
	"fmt"

	"github.com/ebitengine/oto/v3"
)

// Beeper plays a Tone on the default audio device.
type Beeper struct {
	ctx    *oto.Context
	player *oto.Player
	tone   *Tone
}

func New(sampleRate int) (*Beeper, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("couldn't open audio device: %w", err)
	}
	<-ready

	b := &Beeper{
		ctx:  ctx,
		tone: NewTone(sampleRate, ToneFrequency),
	}
	b.player = ctx.NewPlayer(b.tone)
	b.player.Play()
	return b, nil
}

func (b *Beeper) SetActive(active bool) {
	b.tone.SetActive(active)
}

func (b *Beeper) Close() error {
	b.tone.SetActive(false)
	return b.player.Close()
}
