// Package config loads the scheduler settings (HTTP server, database pool,
// study-day boundary, review order and forecast defaults) from defaults, an
// optional YAML file and SCRY_ environment variables, and validates them.
package config
