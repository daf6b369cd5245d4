// Package partner implements the pharmacy-side verification portal: looking
// up a disposal by its code, completing it, and the partner dashboard
// figures.
//
// Completion is the only write path in the system. It marks the disposal
// Completed, credits the owner bonus points and bumps the pharmacy's
// verified counter as a single unit of work inside the Repository.
package partner
