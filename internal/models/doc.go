// Package models lists the chat models an OpenAI compatible endpoint offers,
// so a suitable one can be configured for the openai translation backend.
package models
