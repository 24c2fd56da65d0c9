package service

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/futureme/internal/audio"
	"github.com/futureme/internal/state"
)

type stubSynthesizer struct {
	mu     sync.Mutex
	voices []string
	reply  func(text, voice string) (string, error)
}

func (s *stubSynthesizer) SynthesizeSpeech(_ context.Context, text, voice string) (string, error) {
	s.mu.Lock()
	s.voices = append(s.voices, voice)
	s.mu.Unlock()
	return s.reply(text, voice)
}

type manualOutput struct {
	mu      sync.Mutex
	sources []*manualSource
}

type manualSource struct {
	mu      sync.Mutex
	stopped bool
	onEnded func()
}

func (o *manualOutput) NewSource(*audio.Buffer) (audio.Source, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	src := &manualSource{}
	o.sources = append(o.sources, src)
	return src, nil
}

func (o *manualOutput) all() []*manualSource {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]*manualSource(nil), o.sources...)
}

func (s *manualSource) Start(onEnded func()) error {
	s.mu.Lock()
	s.onEnded = onEnded
	s.mu.Unlock()
	return nil
}

func (s *manualSource) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
}

func (s *manualSource) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

func (s *manualSource) finish() {
	s.mu.Lock()
	fn := s.onEnded
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func pcmPayload() string {
	// 四个采样：0, 16384, -32768, 32767
	return base64.StdEncoding.EncodeToString([]byte{0x00, 0x00, 0x00, 0x40, 0x00, 0x80, 0xff, 0x7f})
}

func TestVoiceForPersona(t *testing.T) {
	cases := map[state.Persona]string{
		state.PersonaStrict:   VoiceZephyr,
		state.PersonaCalm:     VoiceKore,
		state.PersonaFriendly: VoicePuck,
		state.Persona("Odd"):  VoiceZephyr,
	}
	for persona, want := range cases {
		if got := VoiceFor(persona); got != want {
			t.Fatalf("VoiceFor(%q) = %q, want %q", persona, got, want)
		}
	}
}

func TestVoiceServiceSynthesizeDecodes(t *testing.T) {
	synth := &stubSynthesizer{reply: func(string, string) (string, error) { return pcmPayload(), nil }}
	svc := NewVoiceService(synth, audio.NewPlayer(&manualOutput{}))

	buf := svc.Synthesize(context.Background(), "Keep going.", state.PersonaCalm)
	if buf == nil {
		t.Fatalf("expected decoded buffer")
	}
	if buf.SampleRate != audio.DefaultSampleRate || buf.Channels != 1 || buf.Frames != 4 {
		t.Fatalf("unexpected buffer shape %+v", buf)
	}
	if buf.Data[0][1] != 0.5 || buf.Data[0][2] != -1 {
		t.Fatalf("unexpected samples %v", buf.Data[0])
	}
	if len(synth.voices) != 1 || synth.voices[0] != VoiceKore {
		t.Fatalf("unexpected voices %v", synth.voices)
	}
}

func TestVoiceServiceSynthesizeFailuresReturnNil(t *testing.T) {
	cases := map[string]func(string, string) (string, error){
		"error":   func(string, string) (string, error) { return "", errors.New("upstream down") },
		"empty":   func(string, string) (string, error) { return "", nil },
		"garbage": func(string, string) (string, error) { return "%%%not-base64", nil },
	}
	for name, reply := range cases {
		t.Run(name, func(t *testing.T) {
			svc := NewVoiceService(&stubSynthesizer{reply: reply}, audio.NewPlayer(&manualOutput{}))
			if buf := svc.Speak(context.Background(), "hello", state.PersonaStrict); buf != nil {
				t.Fatalf("expected nil buffer, got %+v", buf)
			}
			if svc.Playing() {
				t.Fatalf("player must stay idle")
			}
		})
	}

	svc := NewVoiceService(nil, nil)
	if buf := svc.Synthesize(context.Background(), "hello", state.PersonaStrict); buf != nil {
		t.Fatalf("expected nil without synthesizer")
	}
}

func TestVoiceServiceSpeakStopsPreviousPlayback(t *testing.T) {
	output := &manualOutput{}
	synth := &stubSynthesizer{reply: func(string, string) (string, error) { return pcmPayload(), nil }}
	svc := NewVoiceService(synth, audio.NewPlayer(output))
	ctx := context.Background()

	if svc.Speak(ctx, "first", state.PersonaFriendly) == nil {
		t.Fatalf("expected first playback")
	}
	if svc.Speak(ctx, "second", state.PersonaFriendly) == nil {
		t.Fatalf("expected second playback")
	}

	sources := output.all()
	if len(sources) != 2 {
		t.Fatalf("expected two sources, got %d", len(sources))
	}
	if !sources[0].isStopped() {
		t.Fatalf("first source should be stopped before the second starts")
	}
	if sources[1].isStopped() || !svc.Playing() {
		t.Fatalf("second source should be playing")
	}

	// 旧播放源的结束回调不能清除新的播放
	sources[0].finish()
	time.Sleep(20 * time.Millisecond)
	if !svc.Playing() {
		t.Fatalf("stale completion cleared the active source")
	}

	sources[1].finish()
	deadline := time.Now().Add(time.Second)
	for svc.Playing() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if svc.Playing() {
		t.Fatalf("expected idle after completion")
	}
}

func TestVoiceServiceClose(t *testing.T) {
	output := &manualOutput{}
	synth := &stubSynthesizer{reply: func(string, string) (string, error) { return pcmPayload(), nil }}
	svc := NewVoiceService(synth, audio.NewPlayer(output))

	svc.Speak(context.Background(), "first", state.PersonaStrict)
	svc.Close()
	if svc.Playing() {
		t.Fatalf("expected idle after close")
	}
	if buf := svc.Speak(context.Background(), "again", state.PersonaStrict); buf != nil {
		t.Fatalf("expected nil after close")
	}
}

type gatedSynthesizer struct {
	release chan struct{}
	calls   int32
}

func (s *gatedSynthesizer) SynthesizeSpeech(ctx context.Context, _, _ string) (string, error) {
	atomic.AddInt32(&s.calls, 1)
	select {
	case <-s.release:
		return pcmPayload(), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestVoiceServiceCancelledCallerDoesNotAffectOthers(t *testing.T) {
	synth := &gatedSynthesizer{release: make(chan struct{})}
	svc := NewVoiceService(synth, audio.NewPlayer(&manualOutput{}))

	ctxA, cancelA := context.WithCancel(context.Background())
	defer cancelA()
	resultA := make(chan *audio.Buffer, 1)
	go func() { resultA <- svc.Synthesize(ctxA, "Keep walking.", state.PersonaStrict) }()

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&synth.calls) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	resultB := make(chan *audio.Buffer, 1)
	go func() { resultB <- svc.Synthesize(context.Background(), "Keep walking.", state.PersonaStrict) }()
	time.Sleep(20 * time.Millisecond)

	cancelA()
	select {
	case buf := <-resultA:
		if buf != nil {
			t.Fatalf("cancelled caller should get no audio")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("cancelled caller did not return")
	}

	close(synth.release)
	select {
	case buf := <-resultB:
		if buf == nil || buf.Frames != 4 {
			t.Fatalf("live caller should get decoded audio, got %+v", buf)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("live caller did not return")
	}

	if calls := atomic.LoadInt32(&synth.calls); calls != 1 {
		t.Fatalf("expected one synthesis request, got %d", calls)
	}
}
