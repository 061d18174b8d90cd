// Package integration runs the storage backends and the RabbitMQ publisher
// against real containers. Run with: go test -tags integration ./internal/integration/
package integration
