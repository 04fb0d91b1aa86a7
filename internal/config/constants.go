package config

import "time"

// Application constants
const (
	// Application Info
	AppName     = "IBEX35 Dashboard"
	ServiceName = "ibex35-dashboard"

	// Environment
	EnvPrefix      = "IBEX"
	DefaultEnvFile = ".env"

	// Data source
	DefaultSourceFile      = "precios_cierre_bolsa.csv"
	DefaultRefreshSchedule = "@every 30s"
	RecentLoadsLimit       = 50

	// Dashboard presentation
	DefaultTitle       = "Dashboard IBEX35"
	DefaultHeading     = "Dashboard IBEX35 Profesional"
	DefaultGridHeight  = 600
	DefaultTheme       = "alpine"
	DefaultChartWidth  = 860
	DefaultChartHeight = 320

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// Network Timeouts
	DefaultRequestTimeout = 30 * time.Second
	WebSocketPingPeriod   = 30 * time.Second
	WebSocketPongWait     = 60 * time.Second
)
