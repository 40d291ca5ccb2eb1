// Package postgres provides a PostgreSQL implementation of the refrag storage
// ports using GORM and the pgvector extension.
//
// Chunk embeddings are stored in a vector column and ranked server-side with
// the cosine distance operator (<=>). Users and side-table rows live in plain
// tables alongside them.
package postgres
