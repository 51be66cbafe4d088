// Copyright © 2025 Neoview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: audio/bell.go
// Summary: Synthesized terminal bell.
//
// The bell is generated, not sampled: a short sine burst with an
// attack/release envelope so it does not click. Speaker initialization is
// owned by the caller; this package only produces streamers.

package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
)

// Config selects the bell sound.
type Config struct {
	// Frequency in Hz. Zero picks the default.
	Frequency float64
	// Duration of the whole burst. Zero picks the default.
	Duration time.Duration
	// Volume in [0, 1]. Zero is silent; use DefaultConfig for an audible one.
	Volume float64
	// SampleRate of the output device. Zero picks the default.
	SampleRate beep.SampleRate
}

// DefaultConfig returns the standard bell: a short A5 ping.
func DefaultConfig() Config {
	return Config{
		Frequency:  880,
		Duration:   90 * time.Millisecond,
		Volume:     0.4,
		SampleRate: 44100,
	}
}

const (
	attackRatio  = 0.1
	releaseRatio = 0.5
)

// Bell returns a streamer playing one bell burst, along with the sample rate
// the caller should have initialized the speaker with.
func Bell(cfg Config) (beep.Streamer, beep.SampleRate) {
	def := DefaultConfig()
	if cfg.Frequency <= 0 {
		cfg.Frequency = def.Frequency
	}
	if cfg.Duration <= 0 {
		cfg.Duration = def.Duration
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = def.SampleRate
	}
	if cfg.Volume < 0 {
		cfg.Volume = 0
	}
	if cfg.Volume > 1 {
		cfg.Volume = 1
	}

	total := cfg.SampleRate.N(cfg.Duration)
	return &bellStreamer{
		freq:    cfg.Frequency,
		volume:  cfg.Volume,
		rate:    cfg.SampleRate,
		total:   total,
		attack:  int(float64(total) * attackRatio),
		release: int(float64(total) * releaseRatio),
	}, cfg.SampleRate
}

// bellStreamer is a sine oscillator with a linear attack and release ramp.
type bellStreamer struct {
	freq   float64
	volume float64
	rate   beep.SampleRate

	phase    float64
	position int
	total    int
	attack   int
	release  int
}

func (b *bellStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if b.position >= b.total {
			return i, false
		}

		val := math.Sin(2*math.Pi*b.phase) * b.volume * b.gain()

		samples[i][0] = val
		samples[i][1] = val

		b.phase += b.freq / float64(b.rate)
		b.phase -= math.Floor(b.phase)
		b.position++
	}
	return len(samples), true
}

func (b *bellStreamer) Err() error { return nil }

// gain is the envelope value at the current position: ramp up over the
// attack, hold, ramp down over the release tail.
func (b *bellStreamer) gain() float64 {
	if b.attack > 0 && b.position < b.attack {
		return float64(b.position) / float64(b.attack)
	}
	tail := b.total - b.position
	if b.release > 0 && tail < b.release {
		return float64(tail) / float64(b.release)
	}
	return 1
}
