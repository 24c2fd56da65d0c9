package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/futureme/internal/audio"
	"github.com/futureme/internal/state"
	"golang.org/x/sync/singleflight"
)

// 预置音色名称
const (
	VoiceZephyr = "Zephyr"
	VoiceKore   = "Kore"
	VoicePuck   = "Puck"
)

// SpeechSynthesizer 是语音合成服务的边界，返回 base64 编码的 24kHz 单声道 PCM16。
// 返回空字符串表示没有音频。
type SpeechSynthesizer interface {
	SynthesizeSpeech(ctx context.Context, text, voice string) (string, error)
}

// VoiceFor 将语气映射到音色，未知语气使用 Zephyr
func VoiceFor(p state.Persona) string {
	switch p {
	case state.PersonaStrict:
		return VoiceZephyr
	case state.PersonaCalm:
		return VoiceKore
	case state.PersonaFriendly:
		return VoicePuck
	default:
		return VoiceZephyr
	}
}

// VoiceService 请求语音、解码为 Buffer，并通过独占的 Player 播放
type VoiceService struct {
	synth  SpeechSynthesizer
	player *audio.Player
	group  singleflight.Group
}

// NewVoiceService 构造 VoiceService，player 为空时使用计时输出
func NewVoiceService(synth SpeechSynthesizer, player *audio.Player) *VoiceService {
	if player == nil {
		player = audio.NewPlayer(nil)
	}
	return &VoiceService{synth: synth, player: player}
}

// Synthesize 请求并解码语音，任何失败都返回 nil。
// 相同音色与文本的并发请求共享一次合成，某个调用方取消不影响其他调用方。
func (s *VoiceService) Synthesize(ctx context.Context, text string, persona state.Persona) *audio.Buffer {
	text = strings.TrimSpace(text)
	if text == "" || s.synth == nil {
		return nil
	}

	voice := VoiceFor(persona)
	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(voice+"\x00"+text, func() (interface{}, error) {
		payload, err := s.synth.SynthesizeSpeech(shared, text, voice)
		if err != nil {
			log.Printf("[VOICE] synthesize failed (voice=%s): %v", voice, err)
			return (*audio.Buffer)(nil), nil
		}
		if strings.TrimSpace(payload) == "" {
			log.Printf("[VOICE] synthesis returned no audio (voice=%s)", voice)
			return (*audio.Buffer)(nil), nil
		}

		buf, err := audio.Decode(payload, audio.DefaultSampleRate, audio.DefaultChannels)
		if err != nil {
			log.Printf("[VOICE] decode failed (voice=%s): %v", voice, err)
			return (*audio.Buffer)(nil), nil
		}
		return buf, nil
	})

	select {
	case <-ctx.Done():
		return nil
	case res := <-ch:
		return res.Val.(*audio.Buffer)
	}
}

// Speak 先停止当前播放，再合成并播放 text。没有音频时返回 nil，播放状态保持空闲。
func (s *VoiceService) Speak(ctx context.Context, text string, persona state.Persona) *audio.Buffer {
	s.player.Stop()

	buf := s.Synthesize(ctx, text, persona)
	if buf == nil {
		return nil
	}

	if err := s.player.Play(buf); err != nil {
		if !errors.Is(err, audio.ErrPlayerClosed) {
			log.Printf("[VOICE] playback failed: %v", err)
		}
		return nil
	}
	return buf
}

// Playing 报告是否正在播放
func (s *VoiceService) Playing() bool {
	return s.player.Playing()
}

// Stop 停止当前播放
func (s *VoiceService) Stop() {
	s.player.Stop()
}

// Close 停止播放并释放播放器
func (s *VoiceService) Close() {
	s.player.Close()
}
