package ginmw

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reoring/schemarpc/rpc"
)

// Handler dispatches the request body to the function named by the
// ":function" path parameter. Failures are answered with rpc.Response and
// abort the gin chain; a nil result yields 204.
func Handler(srv *rpc.Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		res, err := srv.Call(c.Request.Context(), c.Param("function"), body)
		if err != nil {
			status, payload := rpc.Response(err)
			c.AbortWithStatusJSON(status, payload)
			return
		}
		if res == nil {
			c.Status(http.StatusNoContent)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// Mount registers POST {prefix}/:function on r.
func Mount(r gin.IRouter, prefix string, srv *rpc.Server) {
	r.POST(prefix+"/:function", Handler(srv))
}
