// Package commands defines the boarbot CLI and wires dependencies for
// subcommands.
//
// Commands
//
//   - run      Log in and dispatch events to the handler modules
//   - device   Print the device fingerprint, generating the device on first use
//   - logout   Delete the stored session token
//
// # Implementation
//
// The root command loads .env, the optional YAML config and BOARBOT_*
// variables, applies the persistent flags on top and builds the app.Wire
// before any subcommand runs.
package commands
