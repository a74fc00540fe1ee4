package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"strix/backend/repository"
	"strix/backend/repository/events"
	"strix/backend/service"
	"strix/backend/service/downloads"
	"strix/backend/service/history"
	"strix/backend/service/sessionproxy"
	"strix/backend/service/vpn"
)

type Router struct {
	service *service.Facade
	events  *eventHub
}

func NewRouter(svc *service.Facade, bus *events.Bus) *gin.Engine {
	r := &Router{service: svc, events: newEventHub(bus)}
	engine := gin.New()
	engine.Use(gin.Recovery())
	r.register(engine)
	return engine
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func (r *Router) register(engine *gin.Engine) {
	engine.Use(corsMiddleware())

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now()})
	})

	engine.GET("/snapshot", func(c *gin.Context) {
		c.JSON(http.StatusOK, r.service.Snapshot())
	})

	vpnGroup := engine.Group("/vpn")
	{
		vpnGroup.POST("/connect", r.connectVPN)
		vpnGroup.POST("/disconnect", r.disconnectVPN)
		vpnGroup.GET("/status", r.getVPNStatus)
		vpnGroup.GET("/locations", r.listVPNLocations)
	}

	session := engine.Group("/session")
	{
		session.PUT("/proxy", r.applySessionProxy)
		session.DELETE("/proxy", r.clearSessionProxy)
		session.GET("/proxy", r.getSessionProxy)
	}

	historyGroup := engine.Group("/history")
	{
		historyGroup.GET("/suggestions", r.getHistorySuggestions)
		historyGroup.POST("/visits", r.recordHistoryVisit)
		historyGroup.DELETE("", r.clearHistory)
	}

	telemetryGroup := engine.Group("/telemetry")
	{
		telemetryGroup.GET("/battery", r.getBatteryStatus)
		telemetryGroup.GET("/ram", r.getRAMUsage)
		telemetryGroup.GET("/network-speed", r.getNetworkSpeed)
	}

	settingsGroup := engine.Group("/settings")
	{
		settingsGroup.GET("", r.getSettings)
		settingsGroup.PUT("", r.updateSettings)
	}
	engine.GET("/permissions", r.getPermissionPolicy)

	downloadsGroup := engine.Group("/downloads")
	{
		downloadsGroup.POST("", r.startDownload)
		downloadsGroup.GET("", r.listDownloads)
		downloadsGroup.GET("/location", r.getDownloadLocation)
		downloadsGroup.PUT("/location", r.chooseDownloadLocation)
	}

	engine.GET("/events", r.events.handle)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func (r *Router) handleError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrInvalidData) ||
		errors.Is(err, vpn.ErrInvalidLocation) ||
		errors.Is(err, sessionproxy.ErrEmptyRules) ||
		errors.Is(err, history.ErrEmptyURL) ||
		errors.Is(err, downloads.ErrInvalidURL) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrHistoryEntryNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
