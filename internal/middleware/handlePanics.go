package middleware

import (
	"fmt"
	"net/http"

	"github.com/dfryer1193/camroll/api"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func HandlePanics() gin.RecoveryFunc {
	return func(c *gin.Context, recovered any) {
		log.Error().
			Str("request_id", c.GetString(RequestIDKey)).
			Str("path", c.Request.URL.Path).
			Interface("panic", recovered).
			Msg("Recovered from panic")

		msg := http.StatusText(http.StatusInternalServerError)
		if err, ok := recovered.(error); ok {
			msg = err.Error()
		} else if recovered != nil {
			msg = fmt.Sprint(recovered)
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.ErrorResponse{Error: msg})
	}
}
