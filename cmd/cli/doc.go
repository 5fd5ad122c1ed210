// Package cli wires the fixreply root command: it loads configuration through
// Viper (embedded defaults, config file, .env and FIXREPLY_ variables), builds
// the zap logger and runs the issue reply command.
package cli
