package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/futureme/internal/audio"
	"github.com/futureme/internal/state"
	"github.com/gin-gonic/gin"
)

type speakPayload struct {
	Text string `json:"text"`
}

// Speak 合成并播放语音，成功时返回 WAV，没有音频时返回 204。
// 未提供文本时朗读今日消息。
func (a *API) Speak(c *gin.Context) {
	var payload speakPayload
	if err := c.ShouldBindJSON(&payload); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, http.StatusBadRequest, "请求参数无效")
		return
	}

	st := a.coach.Snapshot()
	var persona state.Persona
	if st.User != nil {
		persona = st.User.Personality
	}

	text := strings.TrimSpace(payload.Text)
	if text == "" {
		text = a.messages.DailyMessage(c.Request.Context(), st.User, st.Stats)
	}

	buf := a.voice.Speak(c.Request.Context(), text, persona)
	if buf == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.Data(http.StatusOK, "audio/wav", audio.EncodeWAV(buf))
}

// VoiceStatus 返回是否正在播放
func (a *API) VoiceStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"playing": a.voice.Playing()})
}

// StopVoice 停止当前播放
func (a *API) StopVoice(c *gin.Context) {
	a.voice.Stop()
	c.JSON(http.StatusOK, gin.H{"playing": false})
}
