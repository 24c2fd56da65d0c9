package handler

import (
	"net/http"

	"github.com/futureme/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const sessionEmailKey = "user_email"

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login 校验账号并建立会话
func (a *API) Login(c *gin.Context) {
	var payload loginPayload
	if !bindJSON(c, &payload, "登录参数无效") {
		return
	}

	st, err := a.coach.Login(c.Request.Context(), payload.Email, payload.Password)
	if err != nil {
		respondServiceError(c, err, "登录失败")
		return
	}

	session := sessions.Default(c)
	session.Set(sessionEmailKey, service.NormalizeEmail(payload.Email))
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "会话保存失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"state": st})
}

// Logout 清除会话、登录标记，并停止正在播放的语音
func (a *API) Logout(c *gin.Context) {
	a.voice.Stop()

	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "会话保存失败")
		return
	}

	st, err := a.coach.Logout()
	if err != nil {
		respondServiceError(c, err, "退出登录失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": st})
}

// SessionEmail 返回当前会话中的登录邮箱，未登录时为空
func SessionEmail(c *gin.Context) string {
	email, _ := sessions.Default(c).Get(sessionEmailKey).(string)
	return email
}

// AuthRequired 是一个简单的认证中间件
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if session.Get(sessionEmailKey) == nil {
			respondError(c, http.StatusUnauthorized, "请先登录")
			c.Abort()
			return
		}
		c.Next()
	}
}
