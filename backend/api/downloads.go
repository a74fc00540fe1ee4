package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type downloadRequest struct {
	URL string `json:"url" binding:"required"`
}

type downloadLocationRequest struct {
	Location string `json:"location"`
}

// startDownload download-request 是 fire-and-forget：登记任务即返回 202，
// 进度与结果走 /events 推送。
func (r *Router) startDownload(c *gin.Context) {
	var req downloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	item, err := r.service.Downloads().Start(c.Request.Context(), req.URL)
	if err != nil {
		r.handleError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, item)
}

func (r *Router) listDownloads(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"downloads": r.service.Downloads().List()})
}

func (r *Router) getDownloadLocation(c *gin.Context) {
	location, err := r.service.Settings().ChooseDownloadLocation(c.Request.Context(), "")
	if err != nil {
		r.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"location": location})
}

func (r *Router) chooseDownloadLocation(c *gin.Context) {
	var req downloadLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	location, err := r.service.Settings().ChooseDownloadLocation(c.Request.Context(), req.Location)
	if err != nil {
		r.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"location": location})
}
