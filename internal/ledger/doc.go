// Package ledger persists run history in SQLite so past animation runs,
// their artifacts, and their failures can be listed after the fact. The
// database is an append-only record, not coordination state; deleting it
// loses history and nothing else.
package ledger
