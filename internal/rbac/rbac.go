package rbac

import "github.com/logistica/backend/internal/models"

// Permission constants
const (
	PermViewAudits         = "view_audits"
	PermManageConductores  = "manage_conductores"
	PermVerifyConductor    = "verify_conductor"
	PermManageVehiculos    = "manage_vehiculos"
	PermManageRutas        = "manage_rutas"
	PermManageAsociaciones = "manage_asociaciones"
	PermAssignPedido       = "assign_pedido"
	PermCreatePedido       = "create_pedido"
	PermUpdatePedidoEstado = "update_pedido_estado"
	PermTrackPedido        = "track_pedido"
	PermViewPedidos        = "view_pedidos"
)

// RolePermissions defines what each role can do.
var RolePermissions = map[string][]string{
	models.RoleAdmin: {
		PermViewAudits, PermManageConductores, PermVerifyConductor, PermManageVehiculos,
		PermManageRutas, PermManageAsociaciones, PermAssignPedido, PermCreatePedido,
		PermUpdatePedidoEstado, PermViewPedidos,
	},
	models.RoleCliente: {
		PermCreatePedido, PermViewPedidos,
	},
	models.RoleConductor: {
		PermUpdatePedidoEstado, PermTrackPedido, PermViewPedidos,
	},
}

// HasPermission checks if a role has a specific permission.
func HasPermission(role, permission string) bool {
	perms, ok := RolePermissions[role]
	if !ok {
		return false
	}
	for _, p := range perms {
		if p == permission {
			return true
		}
	}
	return false
}
