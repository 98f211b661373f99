package model

import "strconv"

type FFProbeOutput struct {
	Streams []FFProbeStream `json:"streams"`
	Format  FFProbeFormat   `json:"format"`
}

type FFProbeStream struct {
	CodecType  string `json:"codec_type"`
	CodecName  string `json:"codec_name"`
	SampleRate int    `json:"sample_rate,string"`
	Channels   int    `json:"channels"`
}

type FFProbeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
}

// HasAudio reports whether at least one audio stream was found
func (p *FFProbeOutput) HasAudio() bool {
	for _, s := range p.Streams {
		if s.CodecType == "audio" {
			return true
		}
	}
	return false
}

// HasVideo reports whether at least one video stream was found. Cover art
// in audio containers is reported as mjpeg/png video and is ignored.
func (p *FFProbeOutput) HasVideo() bool {
	for _, s := range p.Streams {
		if s.CodecType == "video" && s.CodecName != "mjpeg" && s.CodecName != "png" {
			return true
		}
	}
	return false
}

// DurationSeconds returns the container duration, or 0 when unknown
func (p *FFProbeOutput) DurationSeconds() float64 {
	d, err := strconv.ParseFloat(p.Format.Duration, 64)
	if err != nil {
		return 0
	}
	return d
}
