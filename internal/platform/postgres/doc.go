// Package postgres provides the PostgreSQL implementations of the store
// interfaces, the embedded goose schema migrations and connection setup.
//
// Stores accept a store.DBTX so the same code runs against the pool or inside
// a transaction; WithTx rebinds a store to a *sql.Tx.
package postgres
