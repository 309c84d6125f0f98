package serverutils

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RequestContextMiddleware bounds every handler's UserContext with timeout
// and cancels it once the handler returns, so in-flight completion calls
// stop with the request. A non-positive timeout only adds the cancel.
func RequestContextMiddleware(timeout time.Duration) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		var (
			reqCtx context.Context
			cancel context.CancelFunc
		)
		if timeout > 0 {
			reqCtx, cancel = context.WithTimeout(ctx.UserContext(), timeout)
		} else {
			reqCtx, cancel = context.WithCancel(ctx.UserContext())
		}
		defer cancel()

		ctx.SetUserContext(reqCtx)
		return ctx.Next()
	}
}
