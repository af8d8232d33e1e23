package http

import (
	"fmt"
	"time"
)

type Middleware func(next Handler) Handler

// RecoverMiddleware turns a panicking handler into a handler error so the
// error page names the route instead of the worker.
func RecoverMiddleware() Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(args []string) (res Response, err error) {
			defer func() {
				if recovered := recover(); recovered != nil {
					logger.Error("route handler panicked", "panic", recovered)
					err = fmt.Errorf("handler panicked: %v", recovered)
				}
			}()

			return next.Serve(args)
		})
	}
}

func LogMiddleware() Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(args []string) (Response, error) {
			start := time.Now()
			res, err := next.Serve(args)
			logger.Debug("route handled", "args", args, "template", res.Page.Template, "elapsed", time.Since(start), "error", err)
			return res, err
		})
	}
}
