package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type regretPayload struct {
	Horizon string `json:"horizon"`
}

// DailyMessage 返回今日来自未来的消息，生成失败时返回固定文案
func (a *API) DailyMessage(c *gin.Context) {
	st := a.coach.Snapshot()
	message := a.messages.DailyMessage(c.Request.Context(), st.User, st.Stats)
	c.JSON(http.StatusOK, gin.H{"message": message})
}

// SilentJudgment 返回一句冷峻的评判
func (a *API) SilentJudgment(c *gin.Context) {
	st := a.coach.Snapshot()
	message := a.messages.SilentJudgment(c.Request.Context(), st.User, st.Stats)
	c.JSON(http.StatusOK, gin.H{"message": message})
}

// ReverseRegret 返回指定时间跨度之后的遗憾
func (a *API) ReverseRegret(c *gin.Context) {
	var payload regretPayload
	if !bindJSON(c, &payload, "请求参数无效") {
		return
	}

	horizon := strings.TrimSpace(payload.Horizon)
	if horizon == "" {
		respondError(c, http.StatusBadRequest, "时间跨度不能为空")
		return
	}

	st := a.coach.Snapshot()
	message := a.messages.ReverseRegret(c.Request.Context(), st.User, horizon)
	c.JSON(http.StatusOK, gin.H{"message": message, "horizon": horizon})
}
