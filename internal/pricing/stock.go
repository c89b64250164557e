package pricing

// TagOutOfStock marks items with nothing left to list after B2B reservations.
const TagOutOfStock = "Out of Stock"

// AvailableStock is what remains for platform listing once the B2B
// reservation is set aside.
func AvailableStock(stock, reserved int) int {
	if available := stock - reserved; available > 0 {
		return available
	}
	return 0
}

// StockTag derives the status tag from stock and reservation.
func StockTag(stock, reserved int) string {
	if AvailableStock(stock, reserved) == 0 {
		return TagOutOfStock
	}
	return ""
}
