// Package handle defines the numeric identifier shared by every other
// internal package so none of them need to depend on the root package.
package handle

// Handle identifies a registered object without referencing it directly.
// The registry issues these on AddObject/AddPhysicsObject; they are never
// derived from a pointer or hash of the external object.
type Handle uint32

// Invalid is the zero Handle. No object is ever issued this value.
const Invalid Handle = 0
