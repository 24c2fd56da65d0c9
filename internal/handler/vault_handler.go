package handler

import (
	"net/http"
	"strings"

	"github.com/futureme/internal/state"
	"github.com/futureme/internal/vault"
	"github.com/gin-gonic/gin"
)

type memoryPayload struct {
	Text        string `json:"text"`
	TriggerType string `json:"triggerType"`
}

// ListMemories 返回记忆库，可按 trigger 过滤
func (a *API) ListMemories(c *gin.Context) {
	var trigger state.TriggerType
	if raw := strings.TrimSpace(c.Query("trigger")); raw != "" {
		parsed, err := state.ParseTrigger(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		trigger = parsed
	}

	c.JSON(http.StatusOK, gin.H{"memories": a.coach.Memories(trigger)})
}

// ArchiveMemory 将一段文本归档到记忆库，未指定来源时记为 Manual
func (a *API) ArchiveMemory(c *gin.Context) {
	var payload memoryPayload
	if !bindJSON(c, &payload, "记忆参数无效") {
		return
	}

	trigger := state.TriggerManual
	if strings.TrimSpace(payload.TriggerType) != "" {
		parsed, err := state.ParseTrigger(payload.TriggerType)
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		trigger = parsed
	}

	memory, err := a.coach.Archive(payload.Text, trigger)
	if err != nil {
		respondServiceError(c, err, "归档失败")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"memory": memory})
}

// ExportMemories 将记忆库渲染为净化后的 HTML
func (a *API) ExportMemories(c *gin.Context) {
	html, err := vault.RenderHTML(a.coach.Memories(""))
	if err != nil {
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "导出失败")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}
