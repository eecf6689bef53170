// Package app wires the allocation merger together: configuration, the
// structured logger, Prometheus metrics, the merge service and the chi
// router, plus the HTTP server lifecycle with graceful shutdown.
//
// The Application container owns every long-lived component. Construction
// order matters: configuration first, then the logger, then metrics and
// services, then the router that binds the handlers. Run blocks until the
// process receives SIGINT or SIGTERM.
package app
