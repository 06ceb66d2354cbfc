package validation

// Stock-in violation messages.
const (
	MsgWarehouseRequired   = "请选择仓库"
	MsgProductNameRequired = "请填写商品名称"
	MsgQuantityInvalid     = "请填写有效数量"
	MsgImageRequired       = "请上传商品图片"
)

// Attachment is a file picked in a form. Only its presence is validated.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// StockInForm is the merchant's stock-in form. Zero values stand for
// fields the user left empty.
type StockInForm struct {
	WarehouseID int
	ProductName string
	Quantity    int
	Image       *Attachment
}

// ValidateStockIn reports every reason the stock-in form cannot be submitted.
func ValidateStockIn(form StockInForm) Violations {
	v := Violations{}
	v.check(form.WarehouseID != 0, MsgWarehouseRequired)
	v.check(form.ProductName != "", MsgProductNameRequired)
	v.check(form.Quantity > 0, MsgQuantityInvalid)
	v.check(form.Image != nil, MsgImageRequired)
	return v
}
