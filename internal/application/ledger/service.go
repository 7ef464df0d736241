package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Obras-api/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DeletePolicy define qué pasa con el historial al eliminar un material.
type DeletePolicy string

const (
	// DeletePreserveHistory conserva los asientos y anula su referencia al material.
	DeletePreserveHistory DeletePolicy = "preserve"
	// DeleteCascade elimina los asientos junto con el material.
	DeleteCascade DeletePolicy = "cascade"
)

// ParseDeletePolicy convierte el valor de configuración; vacío equivale a preserve.
func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch DeletePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", DeletePreserveHistory:
		return DeletePreserveHistory, nil
	case DeleteCascade:
		return DeleteCascade, nil
	}
	return "", fmt.Errorf("política de eliminación desconocida: %q", s)
}

const (
	defaultTxTimeout = 5 * time.Second
	defaultPageSize  = 10
	maxPageSize      = 100
)

// Options parámetros del servicio de inventario.
type Options struct {
	TxTimeout         time.Duration
	DeletePolicy      DeletePolicy
	LowStockThreshold decimal.Decimal
	Observer          Observer
	Logger            zerolog.Logger
	Clock             func() time.Time
}

// Service es el libro de inventario: única vía para modificar materiales y registrar movimientos.
type Service struct {
	tx       TxRunner
	reads    Repos
	gate     CustodianGate
	feed     ActivityEmitter
	opts     Options
	observer Observer
	log      zerolog.Logger
	now      func() time.Time
}

// NewService construye el servicio. reads se usa para consultas fuera de transacción.
func NewService(tx TxRunner, reads Repos, opts Options) *Service {
	if opts.TxTimeout <= 0 {
		opts.TxTimeout = defaultTxTimeout
	}
	if opts.DeletePolicy == "" {
		opts.DeletePolicy = DeletePreserveHistory
	}
	if opts.LowStockThreshold.IsZero() {
		opts.LowStockThreshold = decimal.NewFromInt(100)
	}
	observer := opts.Observer
	if observer == nil {
		observer = noopObserver{}
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	return &Service{
		tx:       tx,
		reads:    reads,
		gate:     CustodianGate{},
		feed:     ActivityEmitter{now: now},
		opts:     opts,
		observer: observer,
		log:      opts.Logger.With().Str("component", "ledger").Logger(),
		now:      now,
	}
}

// withTimeout acota la unidad de trabajo; al vencer, la transacción se revierte.
func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opts.TxTimeout)
}

// fail deja pasar los errores de negocio y oculta los de infraestructura tras ErrPersistence,
// registrando la causa en el servidor.
func (s *Service) fail(op string, err error) error {
	if domain.IsBusiness(err) {
		return err
	}
	s.log.Error().Err(err).Str("op", op).Msg("operación de inventario abortada")
	return fmt.Errorf("%s: %w", op, domain.ErrPersistence)
}

func normalizePage(page, pageSize int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return pageSize, (page - 1) * pageSize
}
