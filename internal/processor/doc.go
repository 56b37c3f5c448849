// Package processor contains the logic behind the lingochain commands. It
// builds the backends, the cache store and the orchestrator from the
// configuration and coordinates string, batch, file and sync translation,
// backend probing and the analytics report.
package processor
