// Package driver ships a reference implementation of the host
// rendering primitive for headless environments: consumers that want
// store-driven recomputation without a rendering runtime, such as the
// demo server and tests.
package driver
