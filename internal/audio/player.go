package audio

import (
	"errors"
	"sync"
	"time"
)

var (
	// ErrPlayerClosed 在播放器关闭后继续播放时返回
	ErrPlayerClosed = errors.New("audio player is closed")
	// ErrNothingToPlay 表示没有可播放的音频
	ErrNothingToPlay = errors.New("nothing to play")
)

// Source 是一次播放。Start 立即返回，播放结束后异步调用 onEnded；
// Stop 可重复调用。
type Source interface {
	Start(onEnded func()) error
	Stop()
}

// Output 为 Buffer 创建播放源
type Output interface {
	NewSource(b *Buffer) (Source, error)
}

// Player 持有唯一的播放槽位：开始新的播放前总会先停止当前播放，
// 任意时刻最多只有一个活动的 Source。
type Player struct {
	mu      sync.Mutex
	output  Output
	current Source
	seq     uint64
	closed  bool
}

// NewPlayer 构造 Player，output 为空时使用按时长计时的 ClockOutput
func NewPlayer(output Output) *Player {
	if output == nil {
		output = ClockOutput{}
	}
	return &Player{output: output}
}

// Play 停止当前播放并开始播放 b
func (p *Player) Play(b *Buffer) error {
	if b == nil || b.Frames == 0 {
		return ErrNothingToPlay
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPlayerClosed
	}
	p.stopLocked()

	src, err := p.output.NewSource(b)
	if err != nil {
		return err
	}

	p.seq++
	id := p.seq
	p.current = src
	if err := src.Start(func() { go p.ended(id) }); err != nil {
		p.current = nil
		return err
	}
	return nil
}

// Playing 报告是否有活动的播放
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current != nil
}

// Stop 停止当前播放
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

// Close 停止播放并拒绝后续播放，用于所属会话或进程退出
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	p.closed = true
}

func (p *Player) stopLocked() {
	if p.current == nil {
		return
	}
	p.current.Stop()
	p.current = nil
}

// ended 只在结束的播放仍是当前播放时清空槽位，已被替换的旧播放不影响新播放
func (p *Player) ended(id uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.seq == id {
		p.current = nil
	}
}

// ClockOutput 不输出声音，只按 Frames/SampleRate 计时模拟播放过程
type ClockOutput struct{}

// NewSource 实现 Output
func (ClockOutput) NewSource(b *Buffer) (Source, error) {
	return &clockSource{duration: b.Duration()}, nil
}

type clockSource struct {
	mu       sync.Mutex
	duration time.Duration
	timer    *time.Timer
	stopped  bool
}

func (s *clockSource) Start(onEnded func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil
	}
	s.timer = time.AfterFunc(s.duration, onEnded)
	return nil
}

func (s *clockSource) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
	}
}
