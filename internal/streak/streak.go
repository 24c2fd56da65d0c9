// Package streak 实现连续打卡的计算规则。
//
// 两次打卡之间的天数取时间差绝对值除以 24 小时后向上取整，
// 而不是日历日期相减：未按自然日对齐的时间点会多算一天。
package streak

import (
	"math"
	"strings"
	"time"

	"github.com/futureme/internal/state"
)

// DateLayout 是 LastActive 与 DailyLog.Date 的存储格式
const DateLayout = "2006-01-02"

const dayLength = 24 * time.Hour

// Today 返回 now 所在的 UTC 日历日零点
func Today(now time.Time) time.Time {
	u := now.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDate 以 UTC 日历日格式化
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ParseDate 解析 YYYY-MM-DD，结果为 UTC 零点
func ParseDate(raw string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(raw))
}

// DayDistance 返回 ceil(|today - last| / 24h)
func DayDistance(last, today time.Time) int {
	diff := today.Sub(last)
	if diff < 0 {
		diff = -diff
	}
	return int(math.Ceil(float64(diff) / float64(dayLength)))
}

// CheckIn 根据上次活跃日期计算新的统计值并生成当日打卡记录。
// 同一天重复调用时连胜不变，但累计次数仍会增加，由调用方负责拦截。
func CheckIn(stats state.UserStats, today time.Time) (state.UserStats, state.DailyLog) {
	next := stats

	if stats.LastActive == nil {
		next.Streak = 1
	} else if last, err := ParseDate(*stats.LastActive); err != nil {
		// 无法解析的日期视为断签
		next.Streak = 1
	} else {
		switch d := DayDistance(last, today); {
		case d == 1:
			next.Streak = stats.Streak + 1
		case d > 1:
			next.Streak = 1
		}
	}

	date := FormatDate(today)
	next.LastActive = &date
	next.TotalCheckIns = stats.TotalCheckIns + 1

	return next, state.DailyLog{Date: date, Completed: true}
}

// Apply 在 AppState 上执行一次打卡，只追加日志，不修改已有记录
func Apply(st state.AppState, today time.Time) (state.AppState, state.DailyLog) {
	stats, entry := CheckIn(st.Stats, today)
	st.Stats = stats

	logs := make([]state.DailyLog, 0, len(st.Logs)+1)
	logs = append(logs, st.Logs...)
	st.Logs = append(logs, entry)
	return st, entry
}

// Status 汇总界面需要的打卡状态
type Status struct {
	CheckedInToday bool `json:"checkedInToday"`
	// DaysSinceActive 为 -1 表示从未打卡
	DaysSinceActive int  `json:"daysSinceActive"`
	MissedDays      int  `json:"missedDays"`
	StreakAtRisk    bool `json:"streakAtRisk"`
	StreakBroken    bool `json:"streakBroken"`
}

// Evaluate 计算 today 时的打卡状态，不修改 stats
func Evaluate(stats state.UserStats, today time.Time) Status {
	status := Status{DaysSinceActive: -1}
	if stats.LastActive == nil {
		return status
	}

	status.CheckedInToday = *stats.LastActive == FormatDate(today)

	last, err := ParseDate(*stats.LastActive)
	if err != nil {
		status.StreakBroken = stats.Streak > 0
		return status
	}

	d := DayDistance(last, today)
	status.DaysSinceActive = d
	switch {
	case d == 1:
		status.StreakAtRisk = true
	case d > 1:
		status.MissedDays = d - 1
		status.StreakBroken = stats.Streak > 0
	}
	return status
}

// SuggestedTrigger 在断签或漏签时给出记忆来源建议，正常情况下返回空字符串
func SuggestedTrigger(status Status) state.TriggerType {
	switch {
	case status.StreakBroken:
		return state.TriggerStreakBreak
	case status.MissedDays > 0:
		return state.TriggerMissedDays
	default:
		return ""
	}
}
