// Package core provides the business logic of the quiz bank: question
// management, student and score lookups, and bulk spreadsheet imports.
//
// The package has no HTTP dependencies and can be driven by web handlers,
// CLI tools, or tests without modification. Database access goes through a
// [SessionProvider], so the connection pool is injected rather than global.
//
// # Import Pipeline
//
// Question and score imports share one pipeline:
//
//  1. The file extension is checked against xlsx, xls and csv.
//  2. An import slot is taken from the [ImportLimiter].
//  3. [DecodeTable] turns the upload into ordered [Record] values.
//  4. A row mapper turns each record into insert parameters, honoring the
//     configured [ColumnPolicy].
//  5. [RunBatch] inserts every row inside a single transaction and either
//     commits all of them or rolls back all of them.
//
// A failed batch reports the 0-based position of the offending row through
// [BatchInsertError]. Nothing is retried; the caller resubmits the file.
//
// Imports are not idempotent. Re-importing a file inserts its rows again.
//
// # Collections
//
// Questions live in one of a closed set of tables (domain1..domain8, cbt,
// test), modelled by [database.Collection]. Client input is parsed into a
// Collection before any statement runs, and each Collection maps to SQL built
// from constant identifiers.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - DB001-DB011: Database errors (constraints, casts, connections)
//   - VAL001-VAL003: Validation errors (missing columns, unknown collection)
//   - FILE001-FILE004: File errors (format, parse failures)
//   - IMP001-IMP003: Import errors (busy, cancelled, timeout)
package core
