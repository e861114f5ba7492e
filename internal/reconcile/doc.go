// Package reconcile matches spreadsheet rows against the discipline and
// document-type catalogs.
//
// A run is a single synchronous pass over already-parsed rows:
//
//  1. Both catalogs are indexed once: disciplines by normalized code, document
//     types by normalized code plus normalized display name.
//  2. Each row is normalized and deduplicated by its [RowKey]. Rows lacking a
//     discipline code, a document-type code or a document-type name are ignored.
//  3. A row whose discipline is unknown is recorded as a missing discipline and
//     its document type is never looked up.
//  4. A row whose code and name resolve is reported to the caller's match
//     callback. Otherwise the code is either unknown (missing document type) or
//     known under other names (name mismatch).
//
// Problems are never returned as errors. They accumulate in [Warnings], each
// category deduplicated and kept in first-occurrence order, and are flattened
// into display lines once the scan completes.
//
// Nothing in this package performs I/O or keeps state between calls. Callers
// must not mutate the catalog slices while [Reconcile] runs.
package reconcile
