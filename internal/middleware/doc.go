// Package middleware provides HTTP middleware for the metrics listener.
package middleware
