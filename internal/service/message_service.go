package service

import (
	"context"
	"errors"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/futureme/internal/state"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/sync/singleflight"
)

// 生成失败时返回的固定文案，与语气无关
const (
	FallbackDailyMessage = "I am waiting for you at the finish line. Don't stop now."
	FallbackJudgment     = "Your actions speak louder than my words."
	FallbackRegret       = "The regret is too heavy to speak of right now."
)

var errEmptyGeneration = errors.New("generation returned empty text")

// RegretHorizons 是界面提供的反向遗憾时间跨度
var RegretHorizons = []string{"6 months", "1 year", "5 years"}

const dailyCacheSize = 64

// MessageService 构造 prompt 并调用文本生成服务。
// 任何失败都会被吞掉并替换为对应的固定文案，调用方永远拿到可展示的文本。
type MessageService struct {
	gen       TextGenerator
	now       func() time.Time
	group     singleflight.Group
	daily     *lru.Cache[string, string]
	plaintext *bluemonday.Policy
}

// NewMessageService 构造 MessageService
func NewMessageService(gen TextGenerator) *MessageService {
	cache, err := lru.New[string, string](dailyCacheSize)
	if err != nil {
		panic(err)
	}
	return &MessageService{
		gen:       gen,
		now:       time.Now,
		daily:     cache,
		plaintext: bluemonday.StrictPolicy(),
	}
}

// SetClock 覆盖时间来源，主要用于测试。
func (s *MessageService) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	s.now = now
}

// DailyMessageKey 标识一条每日消息：档案实例与连胜天数不变时复用已生成的内容
func DailyMessageKey(profile *state.UserProfile, stats state.UserStats) string {
	identity := "none"
	if profile != nil {
		identity = profile.Identity()
	}
	return identity + "#" + strconv.Itoa(stats.Streak)
}

// DailyMessage 返回今日来自未来的消息。同一 key 只在首次成功时请求一次，
// 连胜变化后才会重新生成；失败结果不缓存，下次查看时会重试。
func (s *MessageService) DailyMessage(ctx context.Context, profile *state.UserProfile, stats state.UserStats) string {
	if profile == nil {
		return FallbackDailyMessage
	}

	key := DailyMessageKey(profile, stats)
	if cached, ok := s.daily.Get(key); ok {
		return cached
	}

	text, err := s.coalesce(ctx, "daily:"+key, "DAILY", func() string {
		return buildDailyPrompt(*profile, stats, s.now().Year())
	})
	if err != nil {
		return FallbackDailyMessage
	}
	s.daily.Add(key, text)
	return text
}

// CachedDailyMessage 返回已生成的每日消息，不触发请求
func (s *MessageService) CachedDailyMessage(profile *state.UserProfile, stats state.UserStats) (string, bool) {
	return s.daily.Get(DailyMessageKey(profile, stats))
}

// SilentJudgment 返回一句冷峻的评判
func (s *MessageService) SilentJudgment(ctx context.Context, profile *state.UserProfile, stats state.UserStats) string {
	if profile == nil {
		return FallbackJudgment
	}

	text, err := s.coalesce(ctx, "judge:"+DailyMessageKey(profile, stats), "JUDGE", func() string {
		return buildJudgmentPrompt(*profile, stats)
	})
	if err != nil {
		return FallbackJudgment
	}
	return text
}

// ReverseRegret 描述 horizon 之后可能出现的遗憾，horizon 由调用方指定
func (s *MessageService) ReverseRegret(ctx context.Context, profile *state.UserProfile, horizon string) string {
	if profile == nil {
		return FallbackRegret
	}

	horizon = strings.Join(strings.Fields(horizon), " ")
	text, err := s.coalesce(ctx, "regret:"+profile.Identity()+"#"+horizon, "REGRET", func() string {
		return buildRegretPrompt(*profile, horizon)
	})
	if err != nil {
		return FallbackRegret
	}
	return text
}

// coalesce 合并同一 key 的并发请求，只发出一次调用。
// 共享调用不跟随任一调用方的取消；调用方取消时只有它自己提前返回。
func (s *MessageService) coalesce(ctx context.Context, key, kind string, prompt func() string) (string, error) {
	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (interface{}, error) {
		if s.gen == nil {
			return "", ErrAIAPIKeyMissing
		}

		p := prompt()
		logAIExchange(kind, "prompt", p)

		started := time.Now()
		text, err := s.gen.GenerateText(shared, p)
		logAIDuration(kind, started, err)
		if err != nil {
			logAIExchange(kind, "error", err.Error())
			return "", err
		}

		cleaned := s.clean(text)
		if cleaned == "" {
			logAIExchange(kind, "error", "empty response after cleanup")
			return "", errEmptyGeneration
		}
		logAIExchange(kind, "response", cleaned)
		return cleaned, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// clean 去除模型输出中的标签，并还原被转义的字符
func (s *MessageService) clean(text string) string {
	stripped := html.UnescapeString(s.plaintext.Sanitize(text))
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(stripped), "\""))
}
