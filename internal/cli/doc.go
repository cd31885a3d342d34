// Package cli provides command-line interface setup and configuration
// for the glossmd application. Commands are built with cobra and settings
// are resolved through viper.
package cli
