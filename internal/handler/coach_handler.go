package handler

import (
	"net/http"

	"github.com/futureme/internal/service"
	"github.com/futureme/internal/streak"
	"github.com/gin-gonic/gin"
)

type onboardingPayload struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	FutureYears    string `json:"futureYears"`
	Personality    string `json:"personality"`
	CareerGoals    string `json:"careerGoals"`
	LifestyleGoals string `json:"lifestyleGoals"`
}

// GetState 返回当前状态、今日打卡状态与档案锁定信息
func (a *API) GetState(c *gin.Context) {
	st := a.coach.Snapshot()
	status := a.coach.Status()

	c.JSON(http.StatusOK, gin.H{
		"state":            st,
		"sessionEmail":     SessionEmail(c),
		"today":            streak.FormatDate(a.coach.Today()),
		"status":           status,
		"profileLocked":    a.coach.ProfileLocked(),
		"suggestedTrigger": streak.SuggestedTrigger(status),
	})
}

// Onboard 创建用户档案
func (a *API) Onboard(c *gin.Context) {
	var payload onboardingPayload
	if !bindJSON(c, &payload, "档案参数无效") {
		return
	}

	profile, err := a.coach.Onboard(service.OnboardingInput{
		Name:           payload.Name,
		Email:          payload.Email,
		FutureYears:    payload.FutureYears,
		Personality:    payload.Personality,
		CareerGoals:    payload.CareerGoals,
		LifestyleGoals: payload.LifestyleGoals,
	})
	if err != nil {
		respondServiceError(c, err, "创建档案失败")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": profile})
}

// CheckIn 记录今日打卡
func (a *API) CheckIn(c *gin.Context) {
	st, entry, err := a.coach.CheckIn()
	if err != nil {
		respondServiceError(c, err, "打卡失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats": st.Stats,
		"log":   entry,
	})
}
