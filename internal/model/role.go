package model

import (
	"fmt"
	"strings"
)

// Role tags a field or detail column with domain semantics that drive extra
// validation and aggregation. Documents may declare it explicitly; older
// documents rely on name inference.
type Role string

const (
	RoleNone      Role = ""
	RoleEmail     Role = "email"
	RolePhone     Role = "phone"
	RoleQuantity  Role = "quantity"
	RoleUnitPrice Role = "unitPrice"
	RoleAmount    Role = "amount"
	RoleItemCode  Role = "itemCode"
	RoleItemName  Role = "itemName"
)

var knownRoles = map[string]Role{
	"email":     RoleEmail,
	"phone":     RolePhone,
	"quantity":  RoleQuantity,
	"unitprice": RoleUnitPrice,
	"amount":    RoleAmount,
	"itemcode":  RoleItemCode,
	"itemname":  RoleItemName,
}

// columnAliases maps normalised column names onto roles.
var columnAliases = map[string]Role{
	"quantity":  RoleQuantity,
	"qty":       RoleQuantity,
	"数量":        RoleQuantity,
	"unitprice": RoleUnitPrice,
	"price":     RoleUnitPrice,
	"单价":        RoleUnitPrice,
	"amount":    RoleAmount,
	"金额":        RoleAmount,
	"itemcode":  RoleItemCode,
	"code":      RoleItemCode,
	"物料编码":      RoleItemCode,
	"商品编码":      RoleItemCode,
	"itemname":  RoleItemName,
	"物料名称":      RoleItemName,
	"商品名称":      RoleItemName,
}

// ParseRole accepts role names case-insensitively, ignoring spaces,
// underscores and hyphens ("unit_price" and "UnitPrice" both match).
func ParseRole(raw string) (Role, error) {
	key := normalizeName(raw)
	if key == "" {
		return RoleNone, nil
	}
	role, ok := knownRoles[key]
	if !ok {
		return RoleNone, fmt.Errorf("model: unknown role %q", raw)
	}
	return role, nil
}

// InferFieldRole derives a role from a field name. Names containing "email"
// or "phone" (any case) keep their historical special validation. When a name
// mentions both, email is reported; InferFieldRoles returns every match.
func InferFieldRole(name string) Role {
	roles := InferFieldRoles(name)
	if len(roles) == 0 {
		return RoleNone
	}
	return roles[0]
}

// InferFieldRoles returns every role whose name hint appears in name, email
// first.
func InferFieldRoles(name string) []Role {
	lower := strings.ToLower(name)
	var roles []Role
	if strings.Contains(lower, "email") || strings.Contains(lower, "邮箱") {
		roles = append(roles, RoleEmail)
	}
	if strings.Contains(lower, "phone") || strings.Contains(lower, "电话") || strings.Contains(lower, "手机") {
		roles = append(roles, RolePhone)
	}
	return roles
}

// InferColumnRole derives a role from a detail column name.
func InferColumnRole(name string) Role {
	return columnAliases[normalizeName(name)]
}

func normalizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch r {
		case ' ', '_', '-', '\t':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
