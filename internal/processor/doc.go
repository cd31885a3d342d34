// Package processor contains the core workflow of glossmd. It loads the
// glossary and prompt template, splits source documents, drives the
// translation engine chunk by chunk and hands the results to the review
// loop or writes them to disk. This package serves as the main coordinator
// between all other components.
package processor
