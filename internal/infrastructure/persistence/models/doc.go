// Package models contains GORM persistence models that map to database tables.
// They are kept apart from domain entities so the domain layer stays free of
// ORM tags. Every model offers ToDomain and FromDomain mappers used by the
// repositories.
//
// Monetary columns use decimal(18,4); status columns store the domain enum
// string. The SQL schema under migrations/ is the source of truth in
// production, All() exists for AutoMigrate in tests.
package models
