// Package storage defines the persistence contracts for users and
// tasks, with in-memory and PostgreSQL implementations in subpackages.
package storage
