package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gestion_logins_total",
		Help: "Login attempts by result.",
	}, []string{"result"})

	RefreshRotationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gestion_refresh_rotations_total",
		Help: "Successful refresh token rotations.",
	})

	PasswordResetsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gestion_password_resets_total",
		Help: "Completed password resets.",
	})

	TenantStoresOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gestion_tenant_stores_open",
		Help: "Tenant stores opened in this process.",
	})
)
