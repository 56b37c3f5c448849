// Package backend defines the capability contract every translation service
// implements, plus the adapters for the supported services.
//
// HTTP services: libre (LibreTranslate), lingva, mymemory, google (the free
// gtx endpoint) and argos (a local LibreTranslate-compatible Argos server).
// AI services: openai and gemini. The lambda backend invokes a translator
// function on AWS Lambda.
//
// Adapters perform no retries. Every call runs under the timeout of its
// Config and is throttled by an optional token bucket. Failures come back as
// *Error so callers can tell which backend failed and why.
package backend
