// Package models contains GORM persistence models that map to database tables.
// Domain entities stay free of ORM tags; each model converts to and from its
// aggregate through ToDomain and FromDomain, and repositories only read and
// write models.
//
// The SQL migrations under internal/infrastructure/migration are the source of
// truth for the Postgres schema. The gorm tags mirror them closely enough for
// AutoMigrate to build an equivalent SQLite schema in tests.
package models
