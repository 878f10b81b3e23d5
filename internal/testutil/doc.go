// Package testutil contains helper builders used across tests to reduce
// boilerplate when constructing conversation logs and run states. They are
// not intended for production usage.
package testutil
