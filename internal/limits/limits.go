// Package limits holds the shared quantity policy. The cart stepper and the
// product selection machine must agree on the same bounds, so both consume
// these helpers instead of computing limits locally.
package limits

// PurchaseLimit caps the per-line-item quantity regardless of stock.
const PurchaseLimit = 10

// MaxAddable returns the maximum quantity that may be set or added given the
// size stock and the quantity already in the cart for the same variant/size.
// The result never drops below 1 even when the cart already holds the limit;
// clamping to that floor is the caller's signal that no room is left.
func MaxAddable(sizeStock, alreadyInCart, purchaseLimit int) int {
	remaining := purchaseLimit - alreadyInCart
	if remaining < 1 {
		remaining = 1
	}
	if sizeStock < remaining {
		return sizeStock
	}
	return remaining
}

// Remaining returns how many more units fit under the purchase limit,
// floored at zero.
func Remaining(alreadyInCart, purchaseLimit int) int {
	remaining := purchaseLimit - alreadyInCart
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Clamp bounds quantity to [1, max]. A max below 1 collapses the range to
// exactly 1 so callers never observe a zero or negative quantity.
func Clamp(quantity, max int) int {
	if max < 1 {
		max = 1
	}
	if quantity < 1 {
		return 1
	}
	if quantity > max {
		return max
	}
	return quantity
}
