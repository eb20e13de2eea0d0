package rest

import (
	"errors"
	"net/http"

	"github.com/dfryer1193/camroll/api"
	"github.com/dfryer1193/camroll/gallery/application"
	"github.com/dfryer1193/camroll/gallery/domain"
	"github.com/dfryer1193/camroll/internal/middleware"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the engine with request logging and panic recovery.
func NewRouter(store *application.RecordStore, capture *application.CaptureService) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.LoggingMiddleware())
	router.Use(gin.CustomRecovery(middleware.HandlePanics()))

	NewApi(router, store, capture)
	return router
}

func NewApi(router *gin.Engine, store *application.RecordStore, capture *application.CaptureService) {
	images := &ImageHandler{store: store, capture: capture}
	sessions := &SessionHandler{capture: capture}

	router.GET("/health", Health)

	imagesV1 := router.Group("images/v1")
	{
		imagesV1.GET("/", images.ListImages)
		imagesV1.POST("/", images.PostImage)
		imagesV1.POST("/import", images.ImportImages)
		imagesV1.GET("/stream", images.StreamImages)
	}

	sessionV1 := router.Group("session/v1")
	{
		sessionV1.GET("/", sessions.GetSession)
		sessionV1.POST("/camera", sessions.SetCamera)
		sessionV1.POST("/capture-error", sessions.CaptureError)
	}
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrEmptyLocator):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrStorageFailure):
		return http.StatusServiceUnavailable
	case errors.Is(err, application.ErrStoreClosed), errors.Is(err, application.ErrServiceClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(statusFor(err), api.ErrorResponse{Error: err.Error()})
}
