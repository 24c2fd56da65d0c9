package audio

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultSampleRate 是语音合成服务返回的固定采样率
	DefaultSampleRate = 24000
	// DefaultChannels 语音合成固定为单声道
	DefaultChannels = 1

	pcm16Scale = 32768.0
)

var (
	// ErrEmptyPayload 表示没有可解码的音频数据
	ErrEmptyPayload = errors.New("audio payload is empty")
	// ErrInvalidFormat 表示采样率或声道数不合法
	ErrInvalidFormat = errors.New("invalid audio format")
)

// Buffer 是解码后的可播放音频，Data[ch][frame] 取值范围 [-1.0, 1.0)
type Buffer struct {
	SampleRate int
	Channels   int
	Frames     int
	Data       [][]float32
}

// Duration 返回播放时长
func (b *Buffer) Duration() time.Duration {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(b.Frames) * time.Second / time.Duration(b.SampleRate)
}

// DecodeBase64 将服务返回的 base64 文本还原为原始字节
func DecodeBase64(payload string) ([]byte, error) {
	trimmed := strings.TrimSpace(payload)
	if trimmed == "" {
		return nil, ErrEmptyPayload
	}
	data, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("decode audio base64: %w", err)
	}
	return data, nil
}

// Int16Samples 按小端序解释为有符号 16 位采样，末尾不足两字节的部分被丢弃
func Int16Samples(data []byte) []int16 {
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return samples
}

// DecodePCM16 将交错存储的 PCM16 数据拆分为各声道并归一化
func DecodePCM16(data []byte, sampleRate, channels int) (*Buffer, error) {
	if sampleRate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("%w: rate=%d channels=%d", ErrInvalidFormat, sampleRate, channels)
	}

	samples := Int16Samples(data)
	if len(samples) == 0 {
		return nil, ErrEmptyPayload
	}

	frames := len(samples) / channels
	buf := &Buffer{
		SampleRate: sampleRate,
		Channels:   channels,
		Frames:     frames,
		Data:       make([][]float32, channels),
	}
	for ch := 0; ch < channels; ch++ {
		channelData := make([]float32, frames)
		for i := 0; i < frames; i++ {
			channelData[i] = float32(samples[i*channels+ch]) / pcm16Scale
		}
		buf.Data[ch] = channelData
	}
	return buf, nil
}

// Decode 组合 base64 解码与 PCM16 解码
func Decode(payload string, sampleRate, channels int) (*Buffer, error) {
	data, err := DecodeBase64(payload)
	if err != nil {
		return nil, err
	}
	return DecodePCM16(data, sampleRate, channels)
}
