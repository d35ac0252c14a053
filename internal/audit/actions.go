package audit

// Action tags. The store accepts any string; these are the tags the
// application emits so the same logical action is always spelled the same way.
const (
	ActionCreate            = "create"
	ActionUpdate            = "update"
	ActionDelete            = "delete"
	ActionVerify            = "verify"
	ActionAssignConductor   = "assign_conductor"
	ActionAssignRuta        = "assign_ruta"
	ActionUnassignDriver    = "unassign_driver"
	ActionCreateSeguimiento = "create_seguimiento"
)

// ActionInfo describes an action tag for the admin UI filter dropdown.
type ActionInfo struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

var knownActions = []ActionInfo{
	{ID: ActionCreate, Label: "Creación"},
	{ID: ActionUpdate, Label: "Actualización"},
	{ID: ActionDelete, Label: "Eliminación"},
	{ID: ActionVerify, Label: "Verificación de conductor"},
	{ID: ActionAssignConductor, Label: "Asignación de conductor"},
	{ID: ActionAssignRuta, Label: "Asignación de ruta"},
	{ID: ActionUnassignDriver, Label: "Desasignación de conductor"},
	{ID: ActionCreateSeguimiento, Label: "Registro de seguimiento"},
}

// KnownActions returns the registered action tags in display order.
func KnownActions() []ActionInfo {
	out := make([]ActionInfo, len(knownActions))
	copy(out, knownActions)
	return out
}

func IsKnownAction(action string) bool {
	for _, a := range knownActions {
		if a.ID == action {
			return true
		}
	}
	return false
}
