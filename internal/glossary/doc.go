// Package glossary loads the mandated source-term to target-term mappings
// that are injected into every translation prompt and used for term
// highlighting during review.
package glossary
