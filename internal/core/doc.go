// Package core provides the business logic for spreadsheet imports.
//
// It sits between the transport layer and the pure reconciler: the web
// handlers and the CLI call into a [Service], which reads the sheet, loads
// the reference catalog, runs the reconciler and stores the outcome.
//
// # Import Flow
//
//  1. [Service.Import] takes a slot from the [ImportLimiter]
//  2. The file is size-checked and parsed by package sheet
//  3. Disciplines and document types come from one catalog snapshot
//  4. Rows are reconciled; matches feed a reconcile.Collector
//  5. With Apply set, links are stored in one transaction and a history
//     row is written
//  6. The project's slot on the [WarningsBoard] is overwritten
//
// [Service.Preview] stops after step 4 and updates only the warnings slot.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each category has a code prefix for support reference:
//
//   - FILE: size, format and decoding problems
//   - IMP: sheet layout problems and unknown import IDs
//   - CAT: reference data could not be loaded
//   - DB: storage failures
//   - UPL: busy, cancelled or timed out requests
package core
