// Package adminmanagement implements the Campus organization admin-set
// mutation protocol: secondary-admin provisioning, permission replacement,
// and removal with demotion.
//
// Layering:
// - application/commands: idempotent mutations guarded by the decision engine
// - application/queries: roster and audit-trail reads
// - application/workers: outbox relay to the event bus
// - ports: repository, idempotency, credential, notifier, and publisher boundaries
// - adapters: memory, postgres, credential, event, and HTTP implementations
// - transport: module-private DTOs for HTTP contracts
//
// Boundary notes:
// - Domain types (roles, capabilities, the organization aggregate) live in
//   authorization-service; this module mutates them but does not redefine them.
// - Every mutation re-runs the decision engine against fresh organization
//   state and serializes through the organization's optimistic version.
package adminmanagement
