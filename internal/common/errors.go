// Package common holds error values shared across repository packages.
package common

import "errors"

// ErrNotFound is returned by repositories when no row matches the query.
var ErrNotFound = errors.New("not found")
