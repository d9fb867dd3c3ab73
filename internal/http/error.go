package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	er "github.com/mcorbin/corbierror"
)

func errorHandler(logger *slog.Logger) func(err error, c echo.Context) {
	return func(err error, c echo.Context) {
		// can happen if ctx.Error() is called in a middleware
		// with nil passed
		if err == nil {
			return
		}
		errLoggedMsg := err.Error() + " on " + c.Request().Method + " " + c.Request().URL.Path
		corbiError, ok := err.(*er.Error)
		if ok {
			if corbiError.Type == er.NotFound {
				logger.Warn(errLoggedMsg)
			} else {
				logger.Error(errLoggedMsg)
			}
			finalErr, status := er.HTTPError(*corbiError)
			if err := c.JSON(status, finalErr); err != nil {
				logger.Error(err.Error())
				c.Response().Status = http.StatusInternalServerError
			}
			return
		}
		logger.Error(errLoggedMsg)
		echoError, ok := err.(*echo.HTTPError)
		if ok {
			if internal := echoError.Internal; internal != nil {
				if jsonError, ok := internal.(*json.UnmarshalTypeError); ok {
					msg := fmt.Sprintf("invalid JSON payload, field %s is incorrect", jsonError.Field)
					if err := c.JSON(http.StatusBadRequest, er.Error{
						Messages: []string{msg},
					}); err != nil {
						logger.Error(err.Error())
						c.Response().Status = http.StatusInternalServerError
					}
					return
				}
			}
			if echoError.Code == http.StatusBadRequest && strings.Contains(echoError.Error(), "Field validation") {
				msg := strings.Split(fmt.Sprintf("%+v", echoError.Message), "\n")
				if err := c.JSON(http.StatusBadRequest, er.Error{
					Messages: msg,
				}); err != nil {
					logger.Error(err.Error())
					c.Response().Status = http.StatusInternalServerError
				}
				return
			}
			if echoError.Code == http.StatusMethodNotAllowed {
				if err := c.JSON(http.StatusMethodNotAllowed, er.Error{
					Messages: []string{"method not allowed"},
				}); err != nil {
					logger.Error(err.Error())
					c.Response().Status = http.StatusInternalServerError
				}
				return
			}
			if echoError.Code == http.StatusNotFound {
				if err := c.JSON(http.StatusNotFound, er.Error{
					Messages: []string{"not found"},
				}); err != nil {
					logger.Warn(err.Error())
					c.Response().Status = http.StatusInternalServerError
				}
				return
			}
		}
		if err := c.JSON(http.StatusInternalServerError, er.Error{
			Messages: []string{"internal server error"},
		}); err != nil {
			logger.Error(err.Error())
			c.Response().Status = http.StatusInternalServerError
		}
	}
}
