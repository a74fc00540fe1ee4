package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"strix/backend/domain"
)

func (r *Router) getSettings(c *gin.Context) {
	settings, err := r.service.Settings().Get(c.Request.Context())
	if err != nil {
		r.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// updateSettings 部分更新设置。前端不等待结果，这里接受后立刻返回 202；
// 单键写入失败只记日志，不中断其余键。
func (r *Router) updateSettings(c *gin.Context) {
	var partial domain.Settings
	if err := c.ShouldBindJSON(&partial); err != nil {
		badRequest(c, err)
		return
	}
	if err := r.service.Settings().Update(c.Request.Context(), partial); err != nil {
		r.handleError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

func (r *Router) getPermissionPolicy(c *gin.Context) {
	c.JSON(http.StatusOK, r.service.Settings().PermissionPolicy())
}
