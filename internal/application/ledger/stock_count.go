package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Costeo-api/internal/application/costing"
	"github.com/jhoicas/Costeo-api/internal/application/ports"
	"github.com/jhoicas/Costeo-api/internal/domain"
	"github.com/jhoicas/Costeo-api/internal/domain/entity"
	"github.com/jhoicas/Costeo-api/pkg/logger"
)

// CountInput entrada para registrar un conteo físico de stock.
type CountInput struct {
	Kind        entity.EntityKind
	EntityID    string
	SupplierID  string
	SKU         string
	PhysicalQty decimal.Decimal
	Auditor     string
	Timestamp   time.Time
}

// AdjustmentInput entrada para una corrección manual (evento add con signo).
type AdjustmentInput struct {
	Kind       entity.EntityKind
	EntityID   string
	SupplierID string
	SKU        string
	Quantity   decimal.Decimal
	Note       string
	CreatedBy  string
	Timestamp  time.Time
}

// RecordCountUseCase registra conteos físicos (auditoría + evento set) y
// correcciones manuales, de forma transaccional y con bloqueo de fila sobre
// la entidad afectada.
type RecordCountUseCase struct {
	tx  ports.TxRunner
	log *logger.Logger
}

// NewRecordCountUseCase construye el caso de uso.
func NewRecordCountUseCase(tx ports.TxRunner, log *logger.Logger) *RecordCountUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &RecordCountUseCase{tx: tx, log: log}
}

// RecordCount calcula la varianza contra el stock derivado del sistema (valor
// con signo, sin clamp), la valoriza al costo unitario vigente, persiste la
// auditoría y recién entonces agrega el evento set. Todo o nada.
func (uc *RecordCountUseCase) RecordCount(ctx context.Context, in CountInput) (*entity.StockAudit, error) {
	if !entity.ValidEntityKind(in.Kind) || in.EntityID == "" || in.Auditor == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.PhysicalQty.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if in.Timestamp.IsZero() {
		in.Timestamp = time.Now()
	}

	var audit *entity.StockAudit
	err := uc.tx.Run(ctx, func(r ports.RepoSet) error {
		if err := lockScope(ctx, r, in.Kind, in.EntityID); err != nil {
			return err
		}

		svc := NewService(r.Events, r.Productions, r.Recipes, r.Materials)
		scope := entity.StockScope{Kind: in.Kind, EntityID: in.EntityID, SupplierID: in.SupplierID, SKU: in.SKU}

		reading, err := svc.CurrentStock(ctx, scope, in.Timestamp)
		if err != nil {
			return err
		}
		if reading.Unlimited {
			// No tiene sentido contar un material de stock infinito.
			return domain.ErrInvalidInput
		}

		unitCost, err := uc.unitCostFor(ctx, r, in.Kind, in.EntityID)
		if err != nil {
			return err
		}

		variance := in.PhysicalQty.Sub(reading.Signed)
		audit = &entity.StockAudit{
			ID:           uuid.New().String(),
			Scope:        scope,
			SystemQty:    reading.Signed,
			PhysicalQty:  in.PhysicalQty,
			Variance:     variance,
			UnitCost:     unitCost,
			VarianceCost: variance.Mul(unitCost),
			Auditor:      in.Auditor,
			Timestamp:    in.Timestamp,
		}
		if err := r.Audits.Create(ctx, audit); err != nil {
			return err
		}

		ev := &entity.StockEvent{
			ID:        uuid.New().String(),
			Scope:     scope,
			Action:    entity.ActionSet,
			Quantity:  in.PhysicalQty,
			Timestamp: in.Timestamp,
			Note:      "conteo físico",
			CreatedBy: in.Auditor,
		}
		return r.Events.Append(ctx, ev)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("kind", string(in.Kind)).
		Str("entity_id", in.EntityID).
		Str("variance", audit.Variance.String()).
		Msg("conteo de stock registrado")
	return audit, nil
}

// RecordAdjustment agrega una corrección manual como nuevo evento add (nunca
// edita eventos históricos). Valida el alcance contra los vínculos del
// material.
func (uc *RecordCountUseCase) RecordAdjustment(ctx context.Context, in AdjustmentInput) (*entity.StockEvent, error) {
	if !entity.ValidEntityKind(in.Kind) || in.EntityID == "" || in.Quantity.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	if in.Timestamp.IsZero() {
		in.Timestamp = time.Now()
	}

	var ev *entity.StockEvent
	err := uc.tx.Run(ctx, func(r ports.RepoSet) error {
		if err := lockScope(ctx, r, in.Kind, in.EntityID); err != nil {
			return err
		}
		scope := entity.StockScope{Kind: in.Kind, EntityID: in.EntityID, SupplierID: in.SupplierID, SKU: in.SKU}

		// CurrentStock valida existencia de la entidad y el alcance
		// proveedor/SKU; el valor en sí no se usa aquí.
		svc := NewService(r.Events, r.Productions, r.Recipes, r.Materials)
		if _, err := svc.CurrentStock(ctx, scope, in.Timestamp); err != nil {
			return err
		}

		ev = &entity.StockEvent{
			ID:        uuid.New().String(),
			Scope:     scope,
			Action:    entity.ActionAdd,
			Quantity:  in.Quantity,
			Timestamp: in.Timestamp,
			Note:      in.Note,
			CreatedBy: in.CreatedBy,
		}
		return r.Events.Append(ctx, ev)
	})
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// unitCostFor costo unitario para valorizar la varianza: costo efectivo del
// proveedor primario para materias primas, costo de receta para premezclas y
// preproductos, precio por unidad para empaques.
func (uc *RecordCountUseCase) unitCostFor(ctx context.Context, r ports.RepoSet, kind entity.EntityKind, entityID string) (decimal.Decimal, error) {
	switch kind {
	case entity.KindRawMaterial:
		m, err := r.Materials.GetByID(ctx, entityID)
		if err != nil {
			return decimal.Zero, err
		}
		if m == nil {
			return decimal.Zero, domain.ErrNotFound
		}
		if link := m.PrimaryLink(); link != nil {
			return link.EffectiveUnitCost(), nil
		}
		return decimal.Zero, nil
	case entity.KindRecipe:
		eng := costing.New(r.Recipes, r.Materials, r.Packagings, uc.log, false)
		return eng.UnitCost(ctx, entityID)
	case entity.KindPackaging:
		p, err := r.Packagings.GetByID(ctx, entityID)
		if err != nil {
			return decimal.Zero, err
		}
		if p == nil {
			return decimal.Zero, domain.ErrNotFound
		}
		return p.PricePerUnit(), nil
	}
	return decimal.Zero, domain.ErrInvalidInput
}

// lockScope serializa escrituras concurrentes sobre la entidad (FOR UPDATE).
func lockScope(ctx context.Context, r ports.RepoSet, kind entity.EntityKind, entityID string) error {
	switch kind {
	case entity.KindRawMaterial:
		return r.Materials.LockByIDs(ctx, []string{entityID})
	case entity.KindRecipe:
		return r.Recipes.LockByIDs(ctx, []string{entityID})
	}
	return nil
}
