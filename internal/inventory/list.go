package inventory

import (
	"github.com/angelmondragon/refurbstock-backend/pkg/enums"
	"github.com/angelmondragon/refurbstock-backend/pkg/pagination"
)

// ListItemsInput captures the search and filter knobs of the inventory view.
type ListItemsInput struct {
	// Search matches model name or brand, ignoring case.
	Search    string
	Condition *enums.Condition
	// Platform keeps only items currently listed on that platform.
	Platform   *enums.Platform
	Pagination pagination.Params
}
