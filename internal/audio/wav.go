package audio

import (
	"bytes"
	"encoding/binary"
	"math"
)

// EncodeWAV 将 Buffer 重新交错为 PCM16 并封装成 RIFF/WAV 文件
func EncodeWAV(b *Buffer) []byte {
	if b == nil || b.Channels <= 0 {
		return nil
	}

	dataSize := b.Frames * b.Channels * 2
	buf := bytes.NewBuffer(make([]byte, 0, 44+dataSize))
	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1))
	binary.Write(buf, binary.LittleEndian, uint16(b.Channels))
	binary.Write(buf, binary.LittleEndian, uint32(b.SampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(b.SampleRate*b.Channels*2))
	binary.Write(buf, binary.LittleEndian, uint16(b.Channels*2))
	binary.Write(buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(dataSize))

	sample := make([]byte, 2)
	for i := 0; i < b.Frames; i++ {
		for ch := 0; ch < b.Channels; ch++ {
			binary.LittleEndian.PutUint16(sample, uint16(toPCM16(b.Data[ch][i])))
			buf.Write(sample)
		}
	}
	return buf.Bytes()
}

func toPCM16(v float32) int16 {
	scaled := math.Round(float64(v) * pcm16Scale)
	if scaled > math.MaxInt16 {
		return math.MaxInt16
	}
	if scaled < math.MinInt16 {
		return math.MinInt16
	}
	return int16(scaled)
}
