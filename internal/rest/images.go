package rest

import (
	"io"
	"net/http"

	"github.com/dfryer1193/camroll/api"
	"github.com/dfryer1193/camroll/gallery/application"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type ImageHandler struct {
	store   *application.RecordStore
	capture *application.CaptureService
}

func (h *ImageHandler) ListImages(c *gin.Context) {
	records, err := h.store.ListAll(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.FromRecords(records))
}

func (h *ImageHandler) PostImage(c *gin.Context) {
	proto := &api.ImageProto{}
	if err := c.ShouldBindJSON(proto); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	var pending *application.PendingInsert
	if proto.CapturedAt == nil {
		pending = h.capture.HandleCapture(proto.Locator)
	} else {
		pending = h.capture.Submit(proto.Locator, *proto.CapturedAt)
	}

	id, err := pending.Wait(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, api.Created{ID: int64(id)})
}

func (h *ImageHandler) ImportImages(c *gin.Context) {
	proto := &api.ImportProto{}
	if err := c.ShouldBindJSON(proto); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	ids, err := h.capture.ImportPicked(c.Request.Context(), proto.Locators)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, api.Imported{IDs: api.FromIDs(ids)})
}

// StreamImages pushes the full record list as a server-sent "images" event
// whenever it changes. The stream ends with an "error" event if the records
// can no longer be read.
func (h *ImageHandler) StreamImages(c *gin.Context) {
	sub, err := h.store.Subscribe(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	defer sub.Close()

	log.Debug().Str("subscription", sub.ID()).Str("client_ip", c.ClientIP()).Msg("Streaming images")

	c.Stream(func(w io.Writer) bool {
		records, ok := <-sub.Updates()
		if !ok {
			if err := sub.Err(); err != nil {
				c.SSEvent("error", api.ErrorResponse{Error: err.Error()})
			}
			return false
		}

		c.SSEvent("images", api.FromRecords(records))
		return true
	})
}
