package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/futureme/internal/state"
	"github.com/futureme/internal/streak"
	"github.com/futureme/internal/vault"
)

var (
	// ErrInvalidCredentials 在登录信息不被认可时返回
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrProfileLocked 在锁定期内重新引导时返回
	ErrProfileLocked = errors.New("profile is locked")
	// ErrProfileRequired 在尚未完成引导时返回
	ErrProfileRequired = errors.New("profile is required")
	// ErrAlreadyCheckedIn 在当天已经打卡时返回
	ErrAlreadyCheckedIn = errors.New("already checked in today")
)

// CoachService 负责登录、引导、打卡与归档等状态迁移。
// 所有修改都经由 state.Container，保存成功后才生效。
type CoachService struct {
	container *state.Container
	auth      Authenticator
	now       func() time.Time
	newID     vault.IDGenerator
}

// NewCoachService 构造 CoachService
func NewCoachService(container *state.Container, auth Authenticator) *CoachService {
	return &CoachService{
		container: container,
		auth:      auth,
		now:       time.Now,
		newID:     vault.NewID,
	}
}

// SetClock 覆盖时间来源，主要用于测试。
func (s *CoachService) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	s.now = now
}

// SetIDGenerator 覆盖记忆 ID 生成器，主要用于测试。
func (s *CoachService) SetIDGenerator(gen vault.IDGenerator) {
	if gen == nil {
		gen = vault.NewID
	}
	s.newID = gen
}

// Snapshot 返回当前状态副本
func (s *CoachService) Snapshot() state.AppState {
	return s.container.Snapshot()
}

// Today 返回当前的 UTC 日历日
func (s *CoachService) Today() time.Time {
	return streak.Today(s.now())
}

// Status 返回今日的打卡状态
func (s *CoachService) Status() streak.Status {
	return streak.Evaluate(s.container.Snapshot().Stats, s.Today())
}

// ProfileLocked 报告当前档案是否仍在锁定期
func (s *CoachService) ProfileLocked() bool {
	st := s.container.Snapshot()
	return st.User != nil && st.User.Locked(s.now())
}

// Login 通过认证后标记为已登录
func (s *CoachService) Login(ctx context.Context, email, password string) (state.AppState, error) {
	if s.auth == nil {
		return state.AppState{}, ErrInvalidCredentials
	}

	ok, err := s.auth.Authenticate(ctx, email, password)
	if err != nil {
		return state.AppState{}, fmt.Errorf("authenticate: %w", err)
	}
	if !ok {
		return state.AppState{}, ErrInvalidCredentials
	}

	return s.container.Update(func(st state.AppState) (state.AppState, error) {
		st.IsAuthenticated = true
		return st, nil
	})
}

// Logout 清除登录标记，其余数据保留
func (s *CoachService) Logout() (state.AppState, error) {
	return s.container.Update(func(st state.AppState) (state.AppState, error) {
		st.IsAuthenticated = false
		return st, nil
	})
}

// OnboardingInput 描述引导流程提交的内容
type OnboardingInput struct {
	Name           string
	Email          string
	FutureYears    string
	Personality    string
	CareerGoals    string
	LifestyleGoals string
}

// Onboard 创建档案；已有档案且仍在锁定期时返回 ErrProfileLocked
func (s *CoachService) Onboard(input OnboardingInput) (state.UserProfile, error) {
	horizon, err := state.ParseHorizon(input.FutureYears)
	if err != nil {
		return state.UserProfile{}, err
	}
	persona, err := state.ParsePersona(input.Personality)
	if err != nil {
		return state.UserProfile{}, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = "User"
	}

	now := s.now().UTC()
	profile := state.NewUserProfile(
		name,
		NormalizeEmail(input.Email),
		horizon,
		persona,
		strings.TrimSpace(input.CareerGoals),
		strings.TrimSpace(input.LifestyleGoals),
		now,
	)

	_, err = s.container.Update(func(st state.AppState) (state.AppState, error) {
		if st.User != nil && st.User.Locked(now) {
			return st, fmt.Errorf("%w until %s", ErrProfileLocked, st.User.LockedUntil.UTC().Format(time.RFC3339))
		}
		st.User = &profile
		return st, nil
	})
	if err != nil {
		return state.UserProfile{}, err
	}
	return profile, nil
}

// CheckIn 记录今日打卡。当天已打卡时返回 ErrAlreadyCheckedIn，状态不变。
func (s *CoachService) CheckIn() (state.AppState, state.DailyLog, error) {
	today := s.Today()

	var entry state.DailyLog
	next, err := s.container.Update(func(st state.AppState) (state.AppState, error) {
		if st.User == nil {
			return st, ErrProfileRequired
		}
		if streak.Evaluate(st.Stats, today).CheckedInToday {
			return st, ErrAlreadyCheckedIn
		}
		var updated state.AppState
		updated, entry = streak.Apply(st, today)
		return updated, nil
	})
	if err != nil {
		return next, state.DailyLog{}, err
	}
	return next, entry, nil
}

// Archive 将文本归档到记忆库头部，文本不做校验
func (s *CoachService) Archive(text string, trigger state.TriggerType) (state.Memory, error) {
	var memory state.Memory
	_, err := s.container.Update(func(st state.AppState) (state.AppState, error) {
		memory, st.Memories = vault.Archive(st.Memories, text, trigger, s.now(), s.newID)
		return st, nil
	})
	if err != nil {
		return state.Memory{}, err
	}
	return memory, nil
}

// Memories 返回记忆库，trigger 为空时返回全部
func (s *CoachService) Memories(trigger state.TriggerType) []state.Memory {
	return vault.Filter(s.container.Snapshot().Memories, trigger)
}
