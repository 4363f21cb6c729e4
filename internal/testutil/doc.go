// Package testutil contains helper builders and utilities used across tests
// to reduce boilerplate when constructing solve payloads, counting handler
// invocations and reading solve responses. These helpers only use the
// standard library and are not intended for production usage.
package testutil
