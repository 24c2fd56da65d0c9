package state

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrInvalidPersona 在教练语气不在固定枚举中时返回
	ErrInvalidPersona = errors.New("invalid persona")
	// ErrInvalidHorizon 在未来时间跨度不在固定枚举中时返回
	ErrInvalidHorizon = errors.New("invalid horizon")
	// ErrInvalidTrigger 在记忆来源类型未知时返回
	ErrInvalidTrigger = errors.New("invalid trigger type")
)

// Persona 是教练的固定语气
type Persona string

const (
	PersonaStrict   Persona = "Strict"
	PersonaCalm     Persona = "Calm"
	PersonaFriendly Persona = "Friendly"
)

// Personas 按界面展示顺序列出全部语气
var Personas = []Persona{PersonaStrict, PersonaCalm, PersonaFriendly}

// ParsePersona 校验外部输入，大小写不敏感
func ParsePersona(raw string) (Persona, error) {
	trimmed := strings.TrimSpace(raw)
	for _, p := range Personas {
		if strings.EqualFold(trimmed, string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPersona, raw)
}

// Horizon 表示未来的自己所处的时间距离
type Horizon string

const (
	Horizon3Years  Horizon = "3 years"
	Horizon5Years  Horizon = "5 years"
	Horizon10Years Horizon = "10 years"
)

// Horizons 列出引导流程可选的时间跨度
var Horizons = []Horizon{Horizon3Years, Horizon5Years, Horizon10Years}

// ParseHorizon 校验引导流程提交的时间跨度
func ParseHorizon(raw string) (Horizon, error) {
	trimmed := strings.Join(strings.Fields(raw), " ")
	for _, h := range Horizons {
		if strings.EqualFold(trimmed, string(h)) {
			return h, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidHorizon, raw)
}

// TriggerType 标记记忆的来源
type TriggerType string

const (
	TriggerManual        TriggerType = "Manual"
	TriggerStreakBreak   TriggerType = "Streak Break"
	TriggerMissedDays    TriggerType = "Missed Days"
	TriggerReverseRegret TriggerType = "Reverse Regret"
)

// TriggerTypes 列出全部记忆来源
var TriggerTypes = []TriggerType{TriggerManual, TriggerStreakBreak, TriggerMissedDays, TriggerReverseRegret}

// ParseTrigger 校验外部输入的记忆来源
func ParseTrigger(raw string) (TriggerType, error) {
	trimmed := strings.Join(strings.Fields(raw), " ")
	for _, tt := range TriggerTypes {
		if strings.EqualFold(trimmed, string(tt)) {
			return tt, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTrigger, raw)
}

// LockPeriodDays 是档案创建后禁止重新引导的天数
const LockPeriodDays = 30

// UserProfile 在引导完成后创建，锁定期内不可修改
type UserProfile struct {
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	FutureYears    Horizon   `json:"futureYears"`
	Personality    Persona   `json:"personality"`
	CareerGoals    string    `json:"careerGoals"`
	LifestyleGoals string    `json:"lifestyleGoals"`
	CreatedAt      time.Time `json:"createdAt"`
	LockedUntil    time.Time `json:"lockedUntil"`
}

// NewUserProfile 以 createdAt 为起点计算 30 天锁定期
func NewUserProfile(name, email string, horizon Horizon, persona Persona, career, lifestyle string, createdAt time.Time) UserProfile {
	return UserProfile{
		Name:           name,
		Email:          email,
		FutureYears:    horizon,
		Personality:    persona,
		CareerGoals:    career,
		LifestyleGoals: lifestyle,
		CreatedAt:      createdAt,
		LockedUntil:    createdAt.AddDate(0, 0, LockPeriodDays),
	}
}

// Locked 报告 now 是否仍处于锁定期
func (p UserProfile) Locked(now time.Time) bool {
	return now.Before(p.LockedUntil)
}

// Identity 用于区分不同的档案实例，同一邮箱重新引导后也会变化
func (p UserProfile) Identity() string {
	return p.Email + "|" + p.CreatedAt.UTC().Format(time.RFC3339Nano)
}

// UserStats 是可变的连续打卡统计
type UserStats struct {
	Streak        int     `json:"streak"`
	LastActive    *string `json:"lastActive"`
	TotalCheckIns int     `json:"totalCheckIns"`
}

// DailyLog 记录一次打卡，写入后不再修改
type DailyLog struct {
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
}

// Memory 是归档到记忆库的一条文本
type Memory struct {
	ID          string      `json:"id"`
	Text        string      `json:"text"`
	TriggerType TriggerType `json:"triggerType"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// AppState 是整个应用状态的聚合根
type AppState struct {
	User            *UserProfile `json:"user"`
	Stats           UserStats    `json:"stats"`
	Memories        []Memory     `json:"memories"`
	Logs            []DailyLog   `json:"logs"`
	IsAuthenticated bool         `json:"isAuthenticated"`
}

// Default 返回首次运行时的空状态
func Default() AppState {
	return AppState{
		Memories: []Memory{},
		Logs:     []DailyLog{},
	}
}

// Clone 深拷贝状态，调用方修改副本不会影响原值
func (s AppState) Clone() AppState {
	out := s
	if s.User != nil {
		user := *s.User
		out.User = &user
	}
	if s.Stats.LastActive != nil {
		last := *s.Stats.LastActive
		out.Stats.LastActive = &last
	}
	out.Memories = append(make([]Memory, 0, len(s.Memories)), s.Memories...)
	out.Logs = append(make([]DailyLog, 0, len(s.Logs)), s.Logs...)
	return out
}

func (s *AppState) normalize() {
	if s.Memories == nil {
		s.Memories = []Memory{}
	}
	if s.Logs == nil {
		s.Logs = []DailyLog{}
	}
	if s.Stats.Streak < 0 {
		s.Stats.Streak = 0
	}
	if s.Stats.TotalCheckIns < 0 {
		s.Stats.TotalCheckIns = 0
	}
}
