package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=4"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UsuarioResponse struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	Nombre       string  `json:"nombre"`
	Apellido     string  `json:"apellido"`
	Rol          string  `json:"rol"`
	CondominioID *string `json:"condominio_id"`
	// ResidenteID is set for residents once their profile exists.
	ResidenteID *string `json:"residente_id"`
}

type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   int             `json:"expires_in"` // seconds
	User        UsuarioResponse `json:"user"`
}

// CrearUsuarioRequest is used by the seed command and administrator tooling.
type CrearUsuarioRequest struct {
	Email          string  `json:"email"           validate:"required,email"`
	Password       string  `json:"password"        validate:"required,min=8"`
	Nombre         string  `json:"nombre"          validate:"required,min=2,max=100"`
	Apellido       string  `json:"apellido"        validate:"max=100"`
	Rol            string  `json:"rol"             validate:"required,oneof=super_administrador administrador residente"`
	CondominioID   *string `json:"condominio_id"   validate:"omitempty,uuid"`
	ViviendaNumero *string `json:"vivienda_numero" validate:"omitempty,max=20"`
}
