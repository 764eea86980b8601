// Package history records generation runs in a local SQLite database.
//
// A run row is inserted when generation starts and finalized when it ends, so
// an interrupted run remains visible with status "running". Each preset
// outcome is stored as a child row. The CLI "history" command reads it back.
package history
