package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"strix/backend/service/vpn"
)

type vpnConnectRequest struct {
	Location string `json:"location" binding:"required"`
}

func (r *Router) connectVPN(c *gin.Context) {
	var req vpnConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	status, err := r.service.VPN().Connect(c.Request.Context(), req.Location)
	if err != nil {
		if errors.Is(err, vpn.ErrInvalidLocation) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}
		// 代理开关应用失败按业务失败上报，连接状态保持不变
		c.JSON(http.StatusOK, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  status.Message,
		"proxy":    status.Proxy,
		"location": status.Location,
	})
}

func (r *Router) disconnectVPN(c *gin.Context) {
	status, err := r.service.VPN().Disconnect(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": status.Message})
}

func (r *Router) getVPNStatus(c *gin.Context) {
	c.JSON(http.StatusOK, r.service.VPN().Status())
}

func (r *Router) listVPNLocations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"locations": vpn.Locations()})
}
