// Package client implements the observatory-side DREAM client: connection
// management, command submission and telemetry reads over the JSON wire.
package client
