// Package config provides configuration helpers for go-guidedog commands.
package config

import (
	"os"
)

// Default endpoints for the companion-app integrations.
const (
	DefaultDashboardPort = "8090"
	DefaultLocationURL   = "ws://127.0.0.1:9001/fixes"
	DefaultCameraDevice  = 0
)

// Env returns the value of an environment variable, or fallback when unset.
func Env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// LocationURL returns the companion-app location feed URL from
// GUIDEDOG_LOCATION_URL, falling back to the local default.
func LocationURL() string {
	return Env("GUIDEDOG_LOCATION_URL", DefaultLocationURL)
}

// DashboardPort returns the dashboard listen port from GUIDEDOG_DASHBOARD_PORT.
func DashboardPort() string {
	return Env("GUIDEDOG_DASHBOARD_PORT", DefaultDashboardPort)
}

