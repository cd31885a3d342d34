// Package batch reads job files for unattended translation of several
// documents. Each job line names a source document and the file its
// translation is written to.
package batch
