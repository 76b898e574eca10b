// Package store keeps the measurement log of every run in a SQLite
// database so that runs can be compared and plotted after the fact.
//
// Measurements are append-only: each run accepts rows with strictly
// increasing iteration numbers and rows are never updated.
package store
