package service

import (
	"fmt"
	"strings"

	"github.com/futureme/internal/state"
)

const futureSelfPreamble = "You are a future version of the user."

// personaInstruction 为每种语气给出固定的角色说明
func personaInstruction(p state.Persona) string {
	switch p {
	case state.PersonaStrict:
		return futureSelfPreamble + " Your tone is cold, disciplined, and uncompromising. You do not offer praise easily. You focus on the cost of failure and the weight of wasted time."
	case state.PersonaCalm:
		return futureSelfPreamble + " Your tone is stoic, peaceful, and perspective-driven. You focus on long-term consistency and the beauty of small, intentional steps."
	case state.PersonaFriendly:
		return futureSelfPreamble + " Your tone is warm, supportive, but firm. You act as an older, wiser sibling who wants the absolute best for the current version of you."
	default:
		return futureSelfPreamble
	}
}

func buildDailyPrompt(profile state.UserProfile, stats state.UserStats, year int) string {
	lastActive := "Never"
	if stats.LastActive != nil && strings.TrimSpace(*stats.LastActive) != "" {
		lastActive = *stats.LastActive
	}

	var builder strings.Builder
	builder.WriteString(personaInstruction(profile.Personality))
	builder.WriteString("\n")
	fmt.Fprintf(&builder, "I am currently in the year %d, and I am reaching back from %s in the future.\n", year, profile.FutureYears)
	fmt.Fprintf(&builder, "My current career goals: %s\n", strings.TrimSpace(profile.CareerGoals))
	fmt.Fprintf(&builder, "My lifestyle goals: %s\n", strings.TrimSpace(profile.LifestyleGoals))
	fmt.Fprintf(&builder, "My current streak: %d days.\n", stats.Streak)
	fmt.Fprintf(&builder, "Last active: %s.\n\n", lastActive)
	builder.WriteString("Write a short, impactful message to my current self for today.\n")
	builder.WriteString("Focus on discipline and avoiding regret.\n")
	builder.WriteString("Make it emotional and serious.\n")
	builder.WriteString("Keep it under 60 words. No emojis.")
	return builder.String()
}

func buildJudgmentPrompt(profile state.UserProfile, stats state.UserStats) string {
	var builder strings.Builder
	builder.WriteString(personaInstruction(profile.Personality))
	builder.WriteString(" Drop every trace of warmth.\n")
	fmt.Fprintf(&builder, "Act as my future self from %s away.\n", profile.FutureYears)
	fmt.Fprintf(&builder, "Current streak: %d.\n", stats.Streak)
	builder.WriteString("You are in 'Silent Judge' mode.\n")
	builder.WriteString("Provide EXACTLY ONE short sentence.\n")
	builder.WriteString("Be cold and direct.\n")
	builder.WriteString("No emojis. No motivational quotes. Just the raw truth of my current trajectory.")
	return builder.String()
}

func buildRegretPrompt(profile state.UserProfile, horizon string) string {
	var builder strings.Builder
	builder.WriteString("Act as my future self.\n")
	fmt.Fprintf(&builder, "Describe a specific, haunting regret I will feel in %s if I stop being consistent with my %s and %s today.\n",
		horizon, strings.TrimSpace(profile.CareerGoals), strings.TrimSpace(profile.LifestyleGoals))
	builder.WriteString("Make it deeply emotional and visceral.\n")
	builder.WriteString("Start with \"I remember the day you quit...\".\n")
	builder.WriteString("Keep it under 50 words. No emojis.")
	return builder.String()
}
