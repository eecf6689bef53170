// Package http contains the HTTP handlers for the allocation merge API.
// Handlers translate between the wire format (multipart uploads, JSON,
// attachment downloads) and the service layer, and report failures as
// RFC 7807 problem details.
package http
