// Package repository selects a store.Repository backend from a DSN.
package repository
