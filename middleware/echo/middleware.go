package echomw

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/reoring/schemarpc/rpc"
)

// Handler dispatches the request body to the function named by the
// ":function" path parameter. Failures are answered with rpc.Response; a nil
// result yields 204.
func Handler(srv *rpc.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		body, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
		}
		res, err := srv.Call(c.Request().Context(), c.Param("function"), body)
		if err != nil {
			status, payload := rpc.Response(err)
			return c.JSON(status, payload)
		}
		if res == nil {
			return c.NoContent(http.StatusNoContent)
		}
		return c.JSON(http.StatusOK, res)
	}
}

// Mount registers POST {prefix}/:function on e.
func Mount(e *echo.Echo, prefix string, srv *rpc.Server) {
	e.POST(prefix+"/:function", Handler(srv))
}
