// Package metrics holds the Prometheus collectors of the service.
package metrics
