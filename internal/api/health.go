package api

import (
	"context"
	"github.com/hellofresh/health-go/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"time"
)

type HealthChecker interface {
	HealthCheck() echo.HandlerFunc
}

type healthChecker struct {
	health *health.Health
}

func NewHealthChecker(version string, checks ...health.Config) (HealthChecker, error) {
	h, err := health.New(health.WithComponent(health.Component{Name: "planner", Version: version}))
	if err != nil {
		return nil, errors.Wrap(err, "create health")
	}

	for _, check := range checks {
		if err = h.Register(check); err != nil {
			return nil, errors.Wrapf(err, "register health check %s", check.Name)
		}
	}

	return &healthChecker{
		health: h,
	}, nil
}

func (h *healthChecker) HealthCheck() echo.HandlerFunc {
	return echo.WrapHandler(h.health.Handler())
}

// PostgresCheck reports the service unavailable when the pool cannot reach
// the database.
func PostgresCheck(pool *pgxpool.Pool) health.Config {
	return health.Config{
		Name:    "postgres",
		Timeout: 2 * time.Second,
		Check: func(ctx context.Context) error {
			return pool.Ping(ctx)
		},
	}
}
