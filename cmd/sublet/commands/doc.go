// Package commands defines the sublet CLI.
//
// Commands
//
//   - serve   Run the HTTP API
//   - seed    Write the demo data, optionally padded with generated listings, as YAML
//   - stats   Print the moderation dashboard aggregates for a seed as JSON
//
// The root command loads configuration and installs the structured logger
// before any subcommand runs.
package commands
