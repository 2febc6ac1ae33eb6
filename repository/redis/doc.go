// Package redis implements store.Repository on Redis. Each document is a
// JSON string under <prefix>doc:<id>; a sorted set <prefix>order keeps
// first-insertion order with scores drawn from the <prefix>seq counter.
package redis
