// Package normalize reads raw storage rows that were written under different
// naming conventions over time: snake_case SQL columns, camelCase API fields
// and documents keyed by a legacy "_id".
//
// Every accessor on Record takes the canonical camelCase name and resolves it
// in a fixed order: the camelCase key, then its snake_case form, then any
// explicit aliases. Display fields accept a default; identifiers do not.
// Date fields come back as ISO-8601 strings or nil.
package normalize
