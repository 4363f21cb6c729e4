// Package hopsgin serves Hops components from a gin engine.
//
// The middleware answers every request whose path belongs to Hops (the
// builtin routes and every registered component key) and passes anything
// else on to the host application's own routes:
//
//	r := gin.New()
//	r.Use(hopsgin.Middleware(dispatcher))
//	r.GET("/health", health)
//
// Hops paths cannot be shadowed by host routes because the middleware
// aborts the chain once it has answered.
package hopsgin

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hupe1980/hops/router"
)

// Dispatcher is the part of router.Dispatcher the middleware needs.
type Dispatcher interface {
	Handles(method, path string) bool
	Dispatch(ctx context.Context, method, path string, body []byte) router.Response
}

// Middleware returns a gin middleware serving Hops requests.
func Middleware(d Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if !d.Handles(c.Request.Method, path) {
			c.Next()
			return
		}

		var body []byte
		if c.Request.Body != nil {
			b, err := io.ReadAll(c.Request.Body)
			if err != nil {
				c.AbortWithStatus(http.StatusBadRequest)
				return
			}
			body = b
		}

		resp := d.Dispatch(c.Request.Context(), c.Request.Method, path, body)
		c.Data(resp.Status, resp.ContentType, resp.Body)
		c.Abort()
	}
}

// Mount installs the middleware on r.
func Mount(r *gin.Engine, d Dispatcher) {
	r.Use(Middleware(d))
}
