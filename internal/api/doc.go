// Package api exposes the review engine over HTTP. Handlers translate
// requests into review.Service calls and map service errors onto status
// codes and sanitized messages.
package api
