package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 遥测接口永远 200：探测失败在服务层折算成哨兵值，前端状态栏不中断轮询。

func (r *Router) getBatteryStatus(c *gin.Context) {
	c.JSON(http.StatusOK, r.service.Telemetry().Battery(c.Request.Context()))
}

func (r *Router) getRAMUsage(c *gin.Context) {
	c.JSON(http.StatusOK, r.service.Telemetry().RAM())
}

func (r *Router) getNetworkSpeed(c *gin.Context) {
	c.JSON(http.StatusOK, r.service.Telemetry().NetworkSpeed())
}
