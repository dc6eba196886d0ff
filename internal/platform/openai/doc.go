// Package openai provides the fallback generation provider family,
// implemented directly against the OpenAI REST API. Chat models go
// through chat completions and image models through image generations
// with base64 responses, so both shapes are parseable by the shared
// artifact extraction in the generation package.
package openai
