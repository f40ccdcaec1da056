// Package tasks synchronizes a destination collection from a source collection across music catalogs, with
// real-time progress reporting.
//
// # Core Operations
//
//  1. [SyncEngine.Sync] : one source collection into one destination collection
//     - Fetches every page of the destination and records the IDs already present
//     - Fetches the source, skipping deleted and malformed items
//     - Searches the destination catalog for each source track and keeps the best candidate under the threshold
//     - Adds the matched IDs that are not yet present, in chunks no larger than [services.Catalog.MaxBatch]
//
//  2. [PlaylistEngine.BulkSync] : many source/destination pairs on a worker pool
//     - Pairs run concurrently; destinations must be distinct
//     - A failing pair is recorded and the others continue
//     - Optionally writes a manifest of every pair through [formatter.WriteFile]
//
// Running Sync twice in a row adds nothing the second time.
//
// # Concurrency
//
// Resolution is sequential unless [SyncOptions.Workers] is above 1. Workers share an x/time/rate limiter and
// store outcomes by source index, so the diff does not depend on completion order. Writes are always sequential.
//
// # Progress Reporting
//
// Progress goes through [SyncOptions.Progress]. Sends use select with default, so a slow or absent reader never
// blocks a run.
package tasks
