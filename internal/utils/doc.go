// Package utils exposes helpers shared by the CLI entrypoint.
//
// ConfigurationLoader layers embedded defaults, configuration files, dotenv
// files and FIXREPLY_ environment variables through Viper. LoggerFactory
// builds zap loggers in structured or console form, and FlushingWriter emits
// the progress transcript whole lines at a time.
package utils
