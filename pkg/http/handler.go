package http

import "github.com/labstack/echo/v4"

// Handler is a route group that can mount itself on an Echo instance.
type Handler interface {
	RegisterRoutes(e *echo.Echo)
}
