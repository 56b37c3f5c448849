// Package analytics records operational data about translations: cache
// efficiency, per-backend latency, a bounded log of recent translations and
// the number of degraded (untranslated) calls.
//
// A Recorder never fails and never blocks on I/O. Snapshots can be persisted
// through a cache.Store and exported as Prometheus metrics.
package analytics
