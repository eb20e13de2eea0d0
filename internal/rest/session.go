package rest

import (
	"errors"
	"net/http"

	"github.com/dfryer1193/camroll/api"
	"github.com/dfryer1193/camroll/gallery/application"
	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	capture *application.CaptureService
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, toSession(h.capture.Session().Snapshot()))
}

func (h *SessionHandler) SetCamera(c *gin.Context) {
	proto := &api.CameraProto{}
	if err := c.ShouldBindJSON(proto); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	if *proto.Open {
		h.capture.Session().OpenCamera()
	} else {
		h.capture.Session().CloseCamera()
	}

	c.JSON(http.StatusOK, toSession(h.capture.Session().Snapshot()))
}

func (h *SessionHandler) CaptureError(c *gin.Context) {
	proto := &api.CaptureErrorProto{}
	if err := c.ShouldBindJSON(proto); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	h.capture.HandleCaptureError(errors.New(proto.Error))
	c.Status(http.StatusNoContent)
}

func toSession(s application.SessionState) api.Session {
	return api.Session{
		CameraOpen:  s.CameraOpen,
		PhotoShown:  s.PhotoShown,
		LastLocator: s.LastLocator,
	}
}
