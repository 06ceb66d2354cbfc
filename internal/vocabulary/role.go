package vocabulary

// Role identifies which part of the console a user works in.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleMerchant Role = "merchant"
	RoleConsumer Role = "consumer"
	RoleDriver   Role = "driver"
)

var roleText = map[Role]string{
	RoleAdmin:    "管理员",
	RoleMerchant: "商户",
	RoleConsumer: "顾客",
	RoleDriver:   "配送员",
}

// Text returns the display name of the role. Unrecognized roles are returned
// unchanged rather than mapped to Unknown.
func (r Role) Text() string {
	if text, ok := roleText[r]; ok {
		return text
	}
	return string(r)
}

// Known reports whether r is one of the four console roles.
func (r Role) Known() bool {
	_, ok := roleText[r]
	return ok
}
