// Package migrations embeds the SQL schema of the grade log store.
package migrations
