// Package campaign implements giveaway campaign lifecycle management.
//
// The service layer contains all business logic for creating, editing,
// publishing, and resolving campaigns. It depends on the repository
// interface defined in this package and should never import from
// internal/api.
//
// Repository implementations live in repository/postgres/.
package campaign
