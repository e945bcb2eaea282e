// Package interfaces defines the core types and contracts shared between the
// notebox components. It provides the boundary between the HTTP layer, the
// services, and the persistence layer without implementation details.
package interfaces
