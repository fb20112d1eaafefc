package handler

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// dateLayout is the wire format for report query parameters
const dateLayout = "2006-01-02"

// pathID parses a positive int32 path parameter
func pathID(c echo.Context, name string) (int32, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, false
	}
	return int32(id), true
}

// queryDate parses an optional YYYY-MM-DD query parameter
func queryDate(c echo.Context, name string) (*time.Time, bool) {
	value := c.QueryParam(name)
	if value == "" {
		return nil, true
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, false
	}
	return &t, true
}
