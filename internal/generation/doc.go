// Package generation orchestrates content generation across external
// generative-AI providers. Given a character description it resolves an
// ordered candidate model list, attempts each model over the primary
// provider family with bounded retry on quota errors, and falls back to a
// secondary family once the primary is exhausted. Response bodies are
// decoded through an ordered list of shape matchers because schemas differ
// across models and providers.
package generation
