// Package sqlxrepos provides PostgreSQL-backed repository implementations
// on top of sqlx.
package sqlxrepos

import "strconv"

func itoa(n int) string { return strconv.Itoa(n) }
