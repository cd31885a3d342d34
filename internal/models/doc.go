// Package models lists the chat models that are available with the
// configured API key, so a suitable translation model can be picked.
package models
