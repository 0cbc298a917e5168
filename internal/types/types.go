// README: Common value types shared across modules.
package types

// ID is an opaque record identifier as issued by the backing store.
type ID string

// Money is an amount in the smallest currency unit (cents).
type Money struct {
	Amount   int64
	Currency string
}
