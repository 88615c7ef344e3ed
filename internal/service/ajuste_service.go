package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"casitas/internal/config"
	"casitas/internal/dto"
	"casitas/internal/model"
	"casitas/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SolicitudAjuste is a manual change of the amount owed on a ledger entry or
// a fine. EsCondonacion waives a fine.
type SolicitudAjuste struct {
	ObjetoTipo    string
	ObjetoID      uuid.UUID
	MontoNuevo    decimal.Decimal
	Motivo        string
	ActorID       *uuid.UUID
	EsCondonacion bool
}

// AjusteService writes monetary adjustments together with an audit record
// that can be reverted exactly once. Audit records are never updated: a
// reversal is a second record pointing at the first.
type AjusteService interface {
	Ajustar(ctx context.Context, req SolicitudAjuste) (*dto.RegistroResponse, error)
	// Revertir undoes the adjustment recorded in registroID on whatever object
	// it targets.
	Revertir(ctx context.Context, registroID uuid.UUID, motivo string, actorID *uuid.UUID) (*dto.RegistroResponse, error)
	// RevertirObjetivo is Revertir guarded by the expected target.
	RevertirObjetivo(ctx context.Context, objetoTipo string, objetoID, registroID uuid.UUID, motivo string, actorID *uuid.UUID) (*dto.RegistroResponse, error)
	Historial(ctx context.Context, objetoTipo string, objetoID uuid.UUID) ([]dto.RegistroResponse, error)
	ObtenerRegistro(ctx context.Context, id uuid.UUID) (*dto.RegistroResponse, error)
	ListarRegistros(ctx context.Context, filter dto.RegistroFilter) (*dto.RegistroListResponse, error)
}

type ajusteService struct {
	gastos       repository.GastoComunRepository
	multas       repository.MultaRepository
	registros    repository.RegistroRepository
	conciliacion ConciliacionService
	cfg          *config.Config
}

func NewAjusteService(
	gastos repository.GastoComunRepository,
	multas repository.MultaRepository,
	registros repository.RegistroRepository,
	conciliacion ConciliacionService,
	cfg *config.Config,
) AjusteService {
	return &ajusteService{
		gastos:       gastos,
		multas:       multas,
		registros:    registros,
		conciliacion: conciliacion,
		cfg:          cfg,
	}
}

// ── Ajustar ──────────────────────────────────────────────────────────────────

func (s *ajusteService) Ajustar(ctx context.Context, req SolicitudAjuste) (*dto.RegistroResponse, error) {
	montoNuevo := req.MontoNuevo.Round(2)
	if montoNuevo.IsNegative() {
		return nil, Validation("el monto nuevo no puede ser negativo")
	}
	motivo := strings.TrimSpace(req.Motivo)
	if motivo == "" {
		return nil, Validation("el motivo del ajuste es obligatorio")
	}
	req.MontoNuevo, req.Motivo = montoNuevo, motivo

	ctx, cancel := conTimeout(ctx, s.cfg.DBTimeout())
	defer cancel()

	var reg *model.Registro
	err := runTx(ctx, s.registros.DB(), func(tx *gorm.DB) error {
		var err error
		switch req.ObjetoTipo {
		case model.ObjetoMulta:
			reg, err = s.ajustarMulta(ctx, tx, req)
		case model.ObjetoGastoComun:
			reg, err = s.ajustarGasto(ctx, tx, req)
		default:
			return Validation("tipo de objeto %q no admite ajustes", req.ObjetoTipo)
		}
		if err != nil {
			return err
		}
		return s.registros.WithTx(tx).Create(ctx, reg)
	})
	if err != nil {
		return nil, dbErr(err, "%s %s no encontrado", strings.ToLower(req.ObjetoTipo), req.ObjetoID)
	}

	log.Info().Str("registro_id", reg.ID.String()).Str("objeto", req.ObjetoTipo).
		Str("objeto_id", req.ObjetoID.String()).Str("monto_nuevo", montoNuevo.String()).
		Msg("ajuste: registrado")
	resp := toRegistroResponse(reg, nil)
	return &resp, nil
}

func (s *ajusteService) ajustarMulta(ctx context.Context, tx *gorm.DB, req SolicitudAjuste) (*model.Registro, error) {
	multas := s.multas.WithTx(tx)
	m, err := multas.FindByIDForUpdate(ctx, req.ObjetoID)
	if err != nil {
		return nil, dbErr(err, "multa %s no encontrada", req.ObjetoID)
	}
	if m.Estado != model.MultaPendiente {
		return nil, Conflict("la multa está %s; solo se ajustan multas pendientes", m.Estado)
	}
	original := m.Monto
	if req.MontoNuevo.Equal(original) && !req.EsCondonacion {
		return nil, Validation("el monto nuevo es igual al actual")
	}

	antes := aporteMulta(m)
	m.Monto = req.MontoNuevo
	if req.EsCondonacion {
		m.Estado = model.MultaCondonada
		m.MotivoCondonacion = &req.Motivo
	}
	if err := multas.Update(ctx, m); err != nil {
		return nil, err
	}

	reg := nuevoRegistroAjuste(req.ActorID, m.CondominioID, model.ObjetoMulta, m.ID)
	if err := s.reflejarEnGasto(ctx, tx, m, antes, reg.ID); err != nil {
		return nil, err
	}

	payload := model.AjusteMulta{
		MultaID:        m.ID,
		AjusteBase:     baseAjuste(model.AccionAjuste, true, original, req.MontoNuevo, req.Motivo),
		EsCondonacion:  req.EsCondonacion,
		EstadoAnterior: model.MultaPendiente,
		EstadoNuevo:    m.Estado,
	}
	verbo := "Ajuste"
	if req.EsCondonacion {
		verbo = "Condonación"
	}
	reg.Detalle = fmt.Sprintf("%s de multa: %s -> %s (%s)", verbo, original.StringFixed(2), req.MontoNuevo.StringFixed(2), req.Motivo)
	reg.Monto = &req.MontoNuevo
	reg.DatosAdicionales = datatypes.NewJSONType(model.DatosRegistro{Ajuste: payload})
	return reg, nil
}

func (s *ajusteService) ajustarGasto(ctx context.Context, tx *gorm.DB, req SolicitudAjuste) (*model.Registro, error) {
	if req.EsCondonacion {
		return nil, Validation("la condonación solo aplica a multas")
	}
	gastos := s.gastos.WithTx(tx)
	g, err := gastos.FindByIDForUpdate(ctx, req.ObjetoID)
	if err != nil {
		return nil, dbErr(err, "gasto común %s no encontrado", req.ObjetoID)
	}
	if g.Estado == model.GastoPagado {
		return nil, Conflict("el gasto común %02d/%d ya está pagado", g.Mes, g.Anio)
	}
	original := g.MontoTotal
	if req.MontoNuevo.Equal(original) {
		return nil, Validation("el monto nuevo es igual al actual")
	}

	// only the base absorbs a manual adjustment; charges keep their origin
	otros := g.CuotaMantencion.Add(g.Servicios).Add(g.Multas)
	base := req.MontoNuevo.Sub(otros)
	if base.IsNegative() {
		return nil, Validation("el monto nuevo %s es menor que los cargos asociados (%s)",
			req.MontoNuevo.StringFixed(2), otros.StringFixed(2))
	}

	reg := nuevoRegistroAjuste(req.ActorID, g.CondominioID, model.ObjetoGastoComun, g.ID)
	baseAnterior := g.MontoBase
	g.MontoBase = base
	g.RecalcularTotal()
	g.AgregarObservacion(model.ObsAjusteManual, req.Motivo, g.MontoTotal.Sub(original), &reg.ID)
	if err := gastos.Update(ctx, g); err != nil {
		return nil, err
	}

	payload := model.AjusteGastoComun{
		GastoComunID:      g.ID,
		AjusteBase:        baseAjuste(model.AccionAjuste, true, original, g.MontoTotal, req.Motivo),
		MontoBaseAnterior: baseAnterior,
		MontoBaseNuevo:    base,
	}
	reg.Detalle = fmt.Sprintf("Ajuste de gasto común %02d/%d: %s -> %s (%s)",
		g.Mes, g.Anio, original.StringFixed(2), g.MontoTotal.StringFixed(2), req.Motivo)
	reg.Monto = &g.MontoTotal
	reg.DatosAdicionales = datatypes.NewJSONType(model.DatosRegistro{Ajuste: payload})
	return reg, nil
}

// ── Revertir ─────────────────────────────────────────────────────────────────

func (s *ajusteService) Revertir(ctx context.Context, registroID uuid.UUID, motivo string, actorID *uuid.UUID) (*dto.RegistroResponse, error) {
	return s.revertir(ctx, registroID, motivo, actorID, func(model.AjustePayload) error { return nil })
}

func (s *ajusteService) RevertirObjetivo(ctx context.Context, objetoTipo string, objetoID, registroID uuid.UUID, motivo string, actorID *uuid.UUID) (*dto.RegistroResponse, error) {
	return s.revertir(ctx, registroID, motivo, actorID, func(p model.AjustePayload) error {
		if p.TipoObjeto() != objetoTipo || p.IDObjeto() != objetoID {
			return Validation("el registro %s no corresponde a %s %s", registroID, strings.ToLower(objetoTipo), objetoID)
		}
		return nil
	})
}

func (s *ajusteService) revertir(ctx context.Context, registroID uuid.UUID, motivo string, actorID *uuid.UUID, coincide func(model.AjustePayload) error) (*dto.RegistroResponse, error) {
	motivo = strings.TrimSpace(motivo)
	if motivo == "" {
		return nil, Validation("el motivo de la reversión es obligatorio")
	}
	ctx, cancel := conTimeout(ctx, s.cfg.DBTimeout())
	defer cancel()

	var rev *model.Registro
	err := runTx(ctx, s.registros.DB(), func(tx *gorm.DB) error {
		registros := s.registros.WithTx(tx)
		orig, err := registros.FindByID(ctx, registroID)
		if err != nil {
			return dbErr(err, "registro %s no encontrado", registroID)
		}
		p := orig.Ajuste()
		if p == nil {
			return Validation("el registro %s no es un ajuste revertible", registroID)
		}
		b := p.Base()
		if b.Accion != model.AccionAjuste || !b.Revertible || b.MontoOriginal == nil {
			return Validation("el registro %s no es un ajuste revertible", registroID)
		}
		if err := coincide(p); err != nil {
			return err
		}

		rev = nuevoRegistroAjuste(actorID, uuid.Nil, p.TipoObjeto(), p.IDObjeto())
		rev.CondominioID = orig.CondominioID
		rev.RegistroOriginalID = &orig.ID

		// the target row lock serialises concurrent reversals of one object
		switch a := p.(type) {
		case model.AjusteMulta:
			err = s.revertirMulta(ctx, tx, orig, a, motivo, rev)
		case model.AjusteGastoComun:
			err = s.revertirGasto(ctx, tx, orig, a, motivo, rev)
		}
		if err != nil {
			return err
		}

		if err := registros.Create(ctx, rev); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return Conflict("el registro %s ya fue revertido", registroID)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, dbErr(err, "registro %s no encontrado", registroID)
	}

	log.Info().Str("registro_id", rev.ID.String()).Str("original_id", registroID.String()).
		Msg("ajuste: revertido")
	resp := toRegistroResponse(rev, nil)
	return &resp, nil
}

// yaRevertido checks for an existing reversal. Callers hold the target row
// lock; the unique index on registro_original_id backs this check.
func (s *ajusteService) yaRevertido(ctx context.Context, tx *gorm.DB, orig *model.Registro) error {
	_, err := s.registros.WithTx(tx).FindReversion(ctx, orig.ID)
	if err == nil {
		return Conflict("el registro %s ya fue revertido", orig.ID)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

func (s *ajusteService) revertirMulta(ctx context.Context, tx *gorm.DB, orig *model.Registro, a model.AjusteMulta, motivo string, rev *model.Registro) error {
	multas := s.multas.WithTx(tx)
	m, err := multas.FindByIDForUpdate(ctx, a.MultaID)
	if err != nil {
		return dbErr(err, "multa %s no encontrada", a.MultaID)
	}
	if err := s.yaRevertido(ctx, tx, orig); err != nil {
		return err
	}
	if !m.Monto.Equal(a.MontoNuevo) || m.Estado != a.EstadoNuevo {
		return Conflict("la multa cambió después del ajuste; revierta primero los cambios posteriores")
	}

	antes := aporteMulta(m)
	montoActual := m.Monto
	m.Monto = *a.MontoOriginal
	m.Estado = a.EstadoAnterior
	if a.EsCondonacion {
		m.MotivoCondonacion = nil
	}
	if err := multas.Update(ctx, m); err != nil {
		return err
	}
	if err := s.reflejarEnGasto(ctx, tx, m, antes, rev.ID); err != nil {
		return err
	}

	payload := model.AjusteMulta{
		MultaID:        m.ID,
		AjusteBase:     baseAjuste(model.AccionReversion, false, montoActual, m.Monto, motivo),
		EsCondonacion:  a.EsCondonacion,
		EstadoAnterior: a.EstadoNuevo,
		EstadoNuevo:    a.EstadoAnterior,
	}
	rev.Detalle = fmt.Sprintf("Reversión de ajuste de multa: %s -> %s (%s)",
		montoActual.StringFixed(2), m.Monto.StringFixed(2), motivo)
	rev.Monto = &m.Monto
	rev.DatosAdicionales = datatypes.NewJSONType(model.DatosRegistro{Ajuste: payload})
	return nil
}

func (s *ajusteService) revertirGasto(ctx context.Context, tx *gorm.DB, orig *model.Registro, a model.AjusteGastoComun, motivo string, rev *model.Registro) error {
	gastos := s.gastos.WithTx(tx)
	g, err := gastos.FindByIDForUpdate(ctx, a.GastoComunID)
	if err != nil {
		return dbErr(err, "gasto común %s no encontrado", a.GastoComunID)
	}
	if err := s.yaRevertido(ctx, tx, orig); err != nil {
		return err
	}
	if g.Estado == model.GastoPagado {
		return Conflict("el gasto común %02d/%d ya está pagado", g.Mes, g.Anio)
	}
	if !g.MontoBase.Equal(a.MontoBaseNuevo) {
		return Conflict("el gasto común cambió después del ajuste; revierta primero los cambios posteriores")
	}

	totalActual := g.MontoTotal
	g.MontoBase = a.MontoBaseAnterior
	g.RecalcularTotal()
	g.AgregarObservacion(model.ObsReversionAjuste, motivo, g.MontoTotal.Sub(totalActual), &rev.ID)
	if err := gastos.Update(ctx, g); err != nil {
		return err
	}

	payload := model.AjusteGastoComun{
		GastoComunID:      g.ID,
		AjusteBase:        baseAjuste(model.AccionReversion, false, totalActual, g.MontoTotal, motivo),
		MontoBaseAnterior: a.MontoBaseNuevo,
		MontoBaseNuevo:    a.MontoBaseAnterior,
	}
	rev.Detalle = fmt.Sprintf("Reversión de ajuste de gasto común %02d/%d: %s -> %s (%s)",
		g.Mes, g.Anio, totalActual.StringFixed(2), g.MontoTotal.StringFixed(2), motivo)
	rev.Monto = &g.MontoTotal
	rev.DatosAdicionales = datatypes.NewJSONType(model.DatosRegistro{Ajuste: payload})
	return nil
}

// ── Fines charged into a ledger entry ────────────────────────────────────────

// aporteMulta is what a fine currently adds to its ledger entry.
func aporteMulta(m *model.Multa) decimal.Decimal {
	if m.Estado == model.MultaCondonada {
		return decimal.Zero
	}
	return m.Monto
}

// reflejarEnGasto moves the multas component of the linked ledger entry by
// the change in the fine's contribution.
func (s *ajusteService) reflejarEnGasto(ctx context.Context, tx *gorm.DB, m *model.Multa, antes decimal.Decimal, ref uuid.UUID) error {
	if m.GastoComunID == nil {
		return nil
	}
	delta := aporteMulta(m).Sub(antes)
	desc := "Ajuste de multa: " + m.Descripcion
	switch {
	case delta.IsPositive():
		_, err := s.conciliacion.AplicarCargoMultaTx(ctx, tx, *m.GastoComunID, delta, desc, &ref)
		return err
	case delta.IsNegative():
		_, err := s.conciliacion.RevertirCargoMultaTx(ctx, tx, *m.GastoComunID, delta.Neg(), desc, &ref)
		return err
	}
	return nil
}

// ── Historial ────────────────────────────────────────────────────────────────

func (s *ajusteService) Historial(ctx context.Context, objetoTipo string, objetoID uuid.UUID) ([]dto.RegistroResponse, error) {
	ctx, cancel := conTimeout(ctx, s.cfg.DBTimeout())
	defer cancel()

	regs, err := s.registros.ListPorObjeto(ctx, objetoTipo, objetoID)
	if err != nil {
		return nil, dbErr(err, "")
	}
	return s.conReversiones(ctx, regs)
}

func (s *ajusteService) ObtenerRegistro(ctx context.Context, id uuid.UUID) (*dto.RegistroResponse, error) {
	ctx, cancel := conTimeout(ctx, s.cfg.DBTimeout())
	defer cancel()

	reg, err := s.registros.FindByID(ctx, id)
	if err != nil {
		return nil, dbErr(err, "registro %s no encontrado", id)
	}
	out, err := s.conReversiones(ctx, []model.Registro{*reg})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (s *ajusteService) ListarRegistros(ctx context.Context, filter dto.RegistroFilter) (*dto.RegistroListResponse, error) {
	ctx, cancel := conTimeout(ctx, s.cfg.DBTimeout())
	defer cancel()

	regs, total, err := s.registros.List(ctx, filter)
	if err != nil {
		return nil, dbErr(err, "")
	}
	data, err := s.conReversiones(ctx, regs)
	if err != nil {
		return nil, err
	}
	return &dto.RegistroListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *ajusteService) conReversiones(ctx context.Context, regs []model.Registro) ([]dto.RegistroResponse, error) {
	ids := make([]uuid.UUID, 0, len(regs))
	for _, r := range regs {
		ids = append(ids, r.ID)
	}
	revs, err := s.registros.ReversionesDe(ctx, ids)
	if err != nil {
		return nil, dbErr(err, "")
	}
	out := make([]dto.RegistroResponse, 0, len(regs))
	for i := range regs {
		var por *uuid.UUID
		if id, ok := revs[regs[i].ID]; ok {
			por = &id
		}
		out = append(out, toRegistroResponse(&regs[i], por))
	}
	return out, nil
}

// MontoSegunHistorial replays adjustment records in creation order and returns
// the amount they leave the object at. ok is false when no record carries an
// adjustment.
func MontoSegunHistorial(regs []model.Registro) (monto decimal.Decimal, ok bool) {
	for i := range regs {
		p := regs[i].Ajuste()
		if p == nil {
			continue
		}
		monto, ok = p.Base().MontoNuevo, true
	}
	return monto, ok
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func baseAjuste(accion string, revertible bool, original, nuevo decimal.Decimal, motivo string) model.AjusteBase {
	return model.AjusteBase{
		Accion:        accion,
		Revertible:    revertible,
		MontoOriginal: &original,
		MontoNuevo:    nuevo,
		Motivo:        motivo,
		Timestamp:     time.Now().UTC(),
	}
}

func nuevoRegistroAjuste(actorID *uuid.UUID, condominioID uuid.UUID, objetoTipo string, objetoID uuid.UUID) *model.Registro {
	return &model.Registro{
		ID:           uuid.New(),
		UsuarioID:    actorID,
		TipoEvento:   model.EventoEdicion,
		CondominioID: &condominioID,
		ObjetoTipo:   &objetoTipo,
		ObjetoID:     &objetoID,
	}
}

func toRegistroResponse(r *model.Registro, revertidoPor *uuid.UUID) dto.RegistroResponse {
	return dto.RegistroResponse{
		ID:                 r.ID.String(),
		UsuarioID:          uuidStr(r.UsuarioID),
		TipoEvento:         r.TipoEvento,
		Detalle:            r.Detalle,
		Monto:              r.Monto,
		CondominioID:       uuidStr(r.CondominioID),
		ObjetoTipo:         r.ObjetoTipo,
		ObjetoID:           uuidStr(r.ObjetoID),
		DatosAdicionales:   r.DatosAdicionales.Data(),
		RegistroOriginalID: uuidStr(r.RegistroOriginalID),
		RevertidoPorID:     uuidStr(revertidoPor),
		CreatedAt:          r.CreatedAt.UTC().Format(time.RFC3339),
	}
}
