package model

type Permission string

const (
	PermManageOwnProducts   Permission = "manage_own_products"
	PermUploadFiles         Permission = "upload_files"
	PermEditOwnCompany      Permission = "edit_own_company"
	PermPlaceOrders         Permission = "place_orders"
	PermCheckout            Permission = "checkout"
	PermViewAllOrders       Permission = "view_orders_any"
	PermEditOrders          Permission = "edit_orders"
	PermDeleteOrders        Permission = "delete_orders"
	PermViewSellerOrders    Permission = "view_seller_orders"
	PermManageQueries       Permission = "manage_queries"
	PermViewAssignedQueries Permission = "view_assigned_queries"
	PermManageUsers         Permission = "manage_users"
	PermViewDashboard       Permission = "view_dashboard"
)

var rolePermissions = map[Role]map[Permission]bool{
	RoleAdmin: {
		PermUploadFiles:         true,
		PermEditOwnCompany:      true,
		PermPlaceOrders:         true,
		PermViewAllOrders:       true,
		PermEditOrders:          true,
		PermDeleteOrders:        true,
		PermViewSellerOrders:    true,
		PermManageQueries:       true,
		PermViewAssignedQueries: true,
		PermManageUsers:         true,
		PermViewDashboard:       true,
	},
	RoleSales: {
		PermEditOwnCompany:      true,
		PermViewAssignedQueries: true,
	},
	RoleBuyer: {
		PermEditOwnCompany: true,
		PermCheckout:       true,
	},
	RoleSeller: {
		PermManageOwnProducts: true,
		PermUploadFiles:       true,
		PermEditOwnCompany:    true,
		PermViewSellerOrders:  true,
	},
}

// Can reports whether role holds perm. Unknown roles hold nothing.
func Can(role Role, perm Permission) bool {
	return rolePermissions[role][perm]
}

// CanAny reports whether role holds at least one of perms.
func CanAny(role Role, perms ...Permission) bool {
	for _, p := range perms {
		if Can(role, p) {
			return true
		}
	}
	return false
}
