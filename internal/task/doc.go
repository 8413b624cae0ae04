// Package task runs background work on a bounded queue drained by a fixed
// pool of workers. The review server uses it to deliver committed review
// events to slow handlers without holding up the HTTP response.
package task
