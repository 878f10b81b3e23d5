// Package model defines the provider-agnostic text generation contract used by
// the supervisor and the workers, plus helpers shared by the concrete
// adapters.
//
// Core goals:
//   - One narrow call: instruction + conversation log in, text out
//   - Keep request shapes minimal and transport independent
//   - Map the multi-sender conversation log onto provider turns in one place (Transcript)
//   - Facilitate lightweight scripting for tests (MockModel)
//
// Providers (OpenAI, Anthropic, Ollama) live in sub-packages and implement the
// Model interface so higher layers stay decoupled from vendor SDKs.
package model
