// Package testutil provides shared fixtures for tests: in-memory allocation
// export workbooks and table builders.
package testutil
