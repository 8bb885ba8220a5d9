// Package telemetry provides OpenTelemetry initialization and helpers
// for tracing and log export across the recipe generator.
//
// The package configures OTLP HTTP export for traces and logs; the
// endpoint may carry a base path which is kept in front of the signal paths.
package telemetry
