// Package engine opens SQLite databases with the modernc.org/sqlite driver and
// registers the SQL scalar functions that expose vector math and the index
// registry to SQL callers. Functions are registered on the driver, so they
// are visible on connections opened after registration.
package engine
