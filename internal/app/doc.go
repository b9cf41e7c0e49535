// Package app wires application dependencies for the boarbot CLI.
//
// Config is assembled from defaults, an optional YAML file, a .env file and
// BOARBOT_* environment variables, in that order; the CLI applies its flags
// last. NewWire builds the file stores, logger and metrics from a validated
// Config, and Run drives one bot session: device, gateway dial, login,
// housekeeping, then event dispatch until the connection or context ends.
package app
