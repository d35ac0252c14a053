package dto

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"` // cliente (default) or conductor
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Pedidos

type CreatePedidoRequest struct {
	ClienteID   *int64  `json:"cliente_id,omitempty"` // admin only
	Origen      string  `json:"origen"`
	Destino     string  `json:"destino"`
	Descripcion *string `json:"descripcion,omitempty"`
	PesoKg      float64 `json:"peso_kg"`
}

type UpdatePedidoRequest struct {
	Origen      *string  `json:"origen,omitempty"`
	Destino     *string  `json:"destino,omitempty"`
	Descripcion *string  `json:"descripcion,omitempty"`
	PesoKg      *float64 `json:"peso_kg,omitempty"`
}

type UpdateEstadoRequest struct {
	Estado string `json:"estado"`
}

type AssignConductorRequest struct {
	ConductorID int64  `json:"conductor_id"`
	VehiculoID  *int64 `json:"vehiculo_id,omitempty"`
}

type AssignRutaRequest struct {
	RutaID int64 `json:"ruta_id"`
}

// Conductores

type ConductorRequest struct {
	UserID   *int64  `json:"user_id,omitempty"`
	Licencia *string `json:"licencia,omitempty"`
	Telefono *string `json:"telefono,omitempty"`
}

type VerifyConductorRequest struct {
	EstadoVerificacion string `json:"estado_verificacion"`
}

// Vehiculos

type VehiculoRequest struct {
	Placa       *string  `json:"placa,omitempty"`
	Marca       *string  `json:"marca,omitempty"`
	Modelo      *string  `json:"modelo,omitempty"`
	CapacidadKg *float64 `json:"capacidad_kg,omitempty"`
}

// Rutas

type RutaRequest struct {
	Nombre      *string  `json:"nombre,omitempty"`
	Origen      *string  `json:"origen,omitempty"`
	Destino     *string  `json:"destino,omitempty"`
	DistanciaKm *float64 `json:"distancia_km,omitempty"`
}

// Asociaciones

type AsociacionRequest struct {
	Nombre      *string `json:"nombre,omitempty"`
	Descripcion *string `json:"descripcion,omitempty"`
}

type LinkConductorRequest struct {
	ConductorID int64 `json:"conductor_id"`
}

// Seguimientos

type SeguimientoRequest struct {
	Latitud  *float64 `json:"latitud"`
	Longitud *float64 `json:"longitud"`
}
