// Package connectors provides sources that feed documents into the
// ingestion pipeline. The filesystem connector reads a directory tree and
// watches it for new or changed files.
package connectors
