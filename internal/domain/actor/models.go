// actor holds the model for an authenticated identity as resolved by the
// identity layer. The server itself does not mint these; it trusts whatever
// the auth middleware hands it.
package actor

// Id of an actor. Opaque to the rest of the system.
type Id string

// Display name of an actor, used only when surfacing who touched what.
type Name string

// An Actor is an authenticated identity attached to mutating requests.
type Actor struct {
	ID   Id
	Name Name
}
