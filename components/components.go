// Package components defines ECS components for the particle field.
//
// A particle is an entity carrying Position, Velocity, Body and Slot. Entities
// are created together when a field mounts and dropped together with their
// world; none are removed individually.
package components
