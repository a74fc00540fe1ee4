package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type visitRequest struct {
	URL   string `json:"url" binding:"required"`
	Title string `json:"title"`
}

func (r *Router) getHistorySuggestions(c *gin.Context) {
	suggestions, err := r.service.History().Suggestions(c.Request.Context(), c.Query("q"))
	if err != nil {
		r.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

func (r *Router) recordHistoryVisit(c *gin.Context) {
	var req visitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	entry, err := r.service.History().RecordVisit(c.Request.Context(), req.URL, req.Title)
	if err != nil {
		r.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (r *Router) clearHistory(c *gin.Context) {
	if err := r.service.History().Clear(c.Request.Context()); err != nil {
		r.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
