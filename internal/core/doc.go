// Package core provides the row transformation and validation pipeline of
// the import parser.
//
// Import files use human-readable codes (dataset short names, nomenclature
// codes, TaxRef cd_nom, user logins) where the database expects integer
// keys. The pipeline rewrites each line into a file ready for PostgreSQL
// \copy and records every anomaly in a [Report].
//
// # Row Flow
//
// The header is planned once by [NewShaper]; every data line then goes
// through [Pipeline.Process]:
//
//  1. Column shaping: remove, add, set values, escape control characters
//  2. Record type stages, e.g. for observations:
//     unique id, empty optional fields, sciname, dates, altitudes, codes
//  3. Keep or Drop
//
// # Failure Classes
//
// Hard failures drop the row and increment [Report.LinesRemovedTotal]:
// unknown sciname, missing or misordered dates, dates in the future.
//
// Soft failures keep the row: an unknown dataset, source, module,
// nomenclature, area, organism, digitiser or acquisition framework code is
// replaced by the null sentinel; altitudes and depths are truncated,
// swapped, moved or nulled.
//
// Setup failures (bad action configuration, empty input, nomenclature
// column without type) are returned as errors before the destination file
// is created.
//
// # Concurrency
//
// A run is strictly sequential. The registry is read-only during the run
// and the report is only written by the goroutine calling [Run].
package core
