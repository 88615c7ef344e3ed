package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"casitas/internal/config"
	"casitas/internal/dto"
	"casitas/internal/model"
	"casitas/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrCredenciales is returned by Login for any unknown email or wrong password.
var ErrCredenciales = errors.New("credenciales invalidas")

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	// CrearUsuario also provisions the resident profile of a residente user.
	CrearUsuario(ctx context.Context, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error)
	// ListarUsuarios lists a condominium's users; an empty id lists all.
	ListarUsuarios(ctx context.Context, condominioID string) ([]dto.UsuarioResponse, error)
	// AsegurarPerfil returns the resident profile of u, creating it on first
	// call. Concurrent calls for the same user yield a single profile.
	AsegurarPerfil(ctx context.Context, u *model.Usuario) (*model.Residente, error)
}

type authService struct {
	repo       repository.UsuarioRepository
	residentes repository.ResidenteRepository
	cfg        *config.Config
}

func NewAuthService(repo repository.UsuarioRepository, residentes repository.ResidenteRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, residentes: residentes, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	ctx, cancel := conTimeout(ctx, s.cfg.DBTimeout())
	defer cancel()

	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCredenciales
		}
		return nil, dbErr(err, "")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrCredenciales
	}

	var residenteID *uuid.UUID
	if user.Rol == model.RolResidente {
		perfil, err := s.AsegurarPerfil(ctx, user)
		if err != nil {
			return nil, err
		}
		residenteID = &perfil.ID
	}

	token, err := s.generateToken(user, residenteID, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	resp := &dto.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   s.cfg.JWTExpirationHours * 3600,
		User:        toUsuarioResponse(user),
	}
	resp.User.ResidenteID = uuidStr(residenteID)
	return resp, nil
}

func (s *authService) CrearUsuario(ctx context.Context, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error) {
	var condominioID *uuid.UUID
	if req.CondominioID != nil {
		id, err := parseUUID("condominio_id", *req.CondominioID)
		if err != nil {
			return nil, err
		}
		condominioID = &id
	}
	if req.Rol != model.RolSuperAdministrador && condominioID == nil {
		return nil, Validation("condominio_id es obligatorio para el rol %s", req.Rol)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, err
	}
	user := &model.Usuario{
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		Nombre:         req.Nombre,
		Apellido:       req.Apellido,
		PasswordHash:   string(hash),
		Rol:            req.Rol,
		CondominioID:   condominioID,
		ViviendaNumero: req.ViviendaNumero,
		Activo:         true,
	}

	ctx, cancel := conTimeout(ctx, s.cfg.DBTimeout())
	defer cancel()
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Conflict("ya existe un usuario con email %s", user.Email)
		}
		return nil, dbErr(err, "")
	}
	resp := toUsuarioResponse(user)
	if user.Rol == model.RolResidente {
		perfil, err := s.AsegurarPerfil(ctx, user)
		if err != nil {
			return nil, err
		}
		resp.ResidenteID = uuidStr(&perfil.ID)
	}
	return &resp, nil
}

func (s *authService) ListarUsuarios(ctx context.Context, condominioID string) ([]dto.UsuarioResponse, error) {
	var cond *uuid.UUID
	if condominioID != "" {
		id, err := parseUUID("condominio_id", condominioID)
		if err != nil {
			return nil, err
		}
		cond = &id
	}
	ctx, cancel := conTimeout(ctx, s.cfg.DBTimeout())
	defer cancel()

	users, err := s.repo.List(ctx, cond)
	if err != nil {
		return nil, dbErr(err, "")
	}
	out := make([]dto.UsuarioResponse, 0, len(users))
	for i := range users {
		out = append(out, toUsuarioResponse(&users[i]))
	}
	return out, nil
}

func (s *authService) AsegurarPerfil(ctx context.Context, u *model.Usuario) (*model.Residente, error) {
	perfil, err := s.residentes.FindByUsuarioID(ctx, u.ID)
	if err == nil {
		return perfil, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, dbErr(err, "")
	}
	if u.CondominioID == nil {
		return nil, Validation("el usuario %s no tiene condominio asignado", u.Email)
	}

	vivienda := "S/N"
	if u.ViviendaNumero != nil && *u.ViviendaNumero != "" {
		vivienda = *u.ViviendaNumero
	}
	perfil = &model.Residente{
		UsuarioID:              &u.ID,
		CondominioID:           *u.CondominioID,
		ViviendaNumero:         vivienda,
		Nombre:                 u.Nombre,
		Apellido:               u.Apellido,
		Email:                  u.Email,
		SuscritoNotificaciones: true,
		Activo:                 true,
	}
	creado, err := s.residentes.CreateIfAbsent(ctx, perfil)
	if err != nil {
		return nil, dbErr(err, "")
	}
	if !creado {
		// another login provisioned it first
		perfil, err = s.residentes.FindByUsuarioID(ctx, u.ID)
		if err != nil {
			return nil, dbErr(err, "perfil de residente no encontrado")
		}
		return perfil, nil
	}
	log.Info().Str("usuario_id", u.ID.String()).Str("residente_id", perfil.ID.String()).
		Msg("auth: perfil de residente creado")
	return perfil, nil
}

func (s *authService) generateToken(user *model.Usuario, residenteID *uuid.UUID, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"email":   user.Email,
		"rol":     user.Rol,
		"exp":     time.Now().Add(duration).Unix(),
		"iat":     time.Now().Unix(),
	}
	if user.CondominioID != nil {
		claims["condominio_id"] = user.CondominioID.String()
	}
	if residenteID != nil {
		claims["residente_id"] = residenteID.String()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func toUsuarioResponse(u *model.Usuario) dto.UsuarioResponse {
	return dto.UsuarioResponse{
		ID:           u.ID.String(),
		Email:        u.Email,
		Nombre:       u.Nombre,
		Apellido:     u.Apellido,
		Rol:          u.Rol,
		CondominioID: uuidStr(u.CondominioID),
	}
}
