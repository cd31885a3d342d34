// Package llm provides the language-model capability used by the translation
// engine: synchronous completion and incremental streaming, backed by OpenAI,
// Gemini or any OpenAI-compatible server such as Ollama. Models can be wrapped
// with a circuit breaker and a fallback model.
package llm
