package api

import (
	"github.com/labstack/echo/v4"
	"github.com/yakoovad/planner/pkg/logger"
	"go.uber.org/zap"
	"time"
)

// ZapLoggerMiddleware puts a request scoped logger tagged with the request
// id into the request context and logs one line per request.
func ZapLoggerMiddleware(l *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			req := c.Request()
			res := c.Response()

			reqLogger := l.With(
				zap.String("request_id", res.Header().Get(echo.HeaderXRequestID)),
			)

			c.SetRequest(req.WithContext(logger.WithLogger(req.Context(), reqLogger)))

			err := next(c)
			if err != nil {
				// Let echo write the response so the logged status is final.
				c.Error(err)
			}

			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("uri", req.RequestURI),
				zap.String("remote_ip", c.RealIP()),
				zap.Int("status", res.Status),
				zap.Duration("latency", time.Since(start)),
				zap.Int64("bytes_in", req.ContentLength),
				zap.Int64("bytes_out", res.Size),
			}

			switch {
			case err != nil:
				reqLogger.Error("request failed", append(fields, zap.Error(err))...)
			case res.Status >= 500:
				reqLogger.Warn("request completed with server error", fields...)
			default:
				reqLogger.Info("request completed", fields...)
			}

			return nil
		}
	}
}
