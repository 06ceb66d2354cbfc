package validation

// Listing violation messages.
const (
	MsgListingQuantityInvalid = "请输入有效的上架数量"
	MsgListingExceedsStock    = "上架数量不能超过库存数量"
	MsgListingPriceInvalid    = "请输入有效的定价"
)

// ListingForm is the merchant's product listing form for one inventory item.
// Stock is nil when the available stock is not known to the form.
type ListingForm struct {
	ProductID       int
	Description     string
	ListingQuantity int
	Stock           *int
	ListingPrice    float64
}

// ValidateListing reports every reason the listing form cannot be submitted.
// Listing exactly the available stock is allowed.
func ValidateListing(form ListingForm) Violations {
	v := Violations{}
	v.check(form.ListingQuantity > 0, MsgListingQuantityInvalid)
	v.check(form.Stock == nil || form.ListingQuantity <= *form.Stock, MsgListingExceedsStock)
	v.check(form.ListingPrice > 0, MsgListingPriceInvalid)
	return v
}
