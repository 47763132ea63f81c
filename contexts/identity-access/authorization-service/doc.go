// Package authorization implements the Campus authorization decision core.
//
// Layering:
// - domain: role hierarchy, capability catalog, organization aggregate, the decision engine
// - application: queries that resolve organization state and run the engine
// - ports: stable boundaries for the organization store and time
// - adapters: concrete HTTP, memory, and postgres implementations
// - transport: module-private DTOs for HTTP contracts
//
// Boundary notes:
// - Keep this module self-contained under the identity-access context.
// - Do not import other context adapters into domain/application.
// - The engine never mutates state; admin-set mutations live in
//   admin-management-service, which re-enters this engine per operation.
package authorization
