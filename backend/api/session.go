package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type sessionProxyRequest struct {
	Rules string `json:"rules" binding:"required"`
}

func (r *Router) applySessionProxy(c *gin.Context) {
	var req sessionProxyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := r.service.SessionProxy().Apply(req.Rules); err != nil {
		r.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (r *Router) clearSessionProxy(c *gin.Context) {
	if err := r.service.SessionProxy().Clear(); err != nil {
		r.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (r *Router) getSessionProxy(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rules": r.service.SessionProxy().Current()})
}
