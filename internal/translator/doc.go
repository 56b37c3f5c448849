// Package translator orchestrates the configured backends. A translation
// consults the cache first, then walks the fallback chain in priority order
// until one backend returns a non-empty result. When every backend fails the
// input is returned unchanged, so callers always get displayable text.
package translator
