package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/dropDatabas3/prepmood/internal/domain/repository"
	"github.com/dropDatabas3/prepmood/internal/domain/types"
	dto "github.com/dropDatabas3/prepmood/internal/http/dto/admin"
	"github.com/dropDatabas3/prepmood/internal/observability/logger"
)

// Errores de inventario.
var (
	ErrInvalidStockStatus = fmt.Errorf("invalid stock status")
	ErrNoUnits            = fmt.Errorf("at least one unit required")
)

// StockService operaciones admin de inventario.
type StockService interface {
	List(ctx context.Context, productID int64, status string, limit, offset int) (*dto.StockListResponse, error)
	Stats(ctx context.Context) (*dto.StockStatsResponse, error)
	Create(ctx context.Context, in dto.StockCreateRequest) ([]dto.StockRow, error)
	Correct(ctx context.Context, unitID, adminUserID int64, in dto.StockCorrectRequest) (*dto.StockRow, error)
}

// StockDeps dependencias del service de stock.
type StockDeps struct {
	Stock repository.StockRepository
}

type stockService struct {
	deps StockDeps
}

// NewStockService crea el service admin de inventario.
func NewStockService(deps StockDeps) StockService {
	return &stockService{deps: deps}
}

func (s *stockService) List(ctx context.Context, productID int64, status string, limit, offset int) (*dto.StockListResponse, error) {
	var st types.StockStatus
	if status != "" {
		st = types.StockStatus(status)
		if !st.IsValid() {
			return nil, ErrInvalidStockStatus
		}
	}
	units, total, err := s.deps.Stock.List(ctx, repository.StockListFilter{
		ProductID: productID,
		Status:    st,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return nil, err
	}
	out := &dto.StockListResponse{Units: make([]dto.StockRow, 0, len(units)), Total: total}
	for i := range units {
		out.Units = append(out.Units, toStockRow(&units[i]))
	}
	return out, nil
}

func (s *stockService) Stats(ctx context.Context) (*dto.StockStatsResponse, error) {
	st, err := s.deps.Stock.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.StockStatsResponse{
		Total:    st.Total,
		InStock:  st.InStock,
		Reserved: st.Reserved,
		Sold:     st.Sold,
	}, nil
}

func (s *stockService) Create(ctx context.Context, in dto.StockCreateRequest) ([]dto.StockRow, error) {
	if in.ProductID <= 0 {
		return nil, repository.ErrInvalidInput
	}
	tokens := make([]string, 0, len(in.Tokens))
	for _, t := range in.Tokens {
		tokens = append(tokens, strings.TrimSpace(t))
	}
	if len(tokens) == 0 {
		return nil, ErrNoUnits
	}

	units, err := s.deps.Stock.Create(ctx, repository.CreateStockInput{
		ProductID:       in.ProductID,
		ProductOptionID: in.ProductOptionID,
		Tokens:          tokens,
		Location:        strings.TrimSpace(in.Location),
		Note:            strings.TrimSpace(in.Note),
	})
	if err != nil {
		return nil, err
	}

	logger.From(ctx).Info("stock units created",
		logger.Count(len(units)),
		logger.Any("product_id", in.ProductID),
	)
	out := make([]dto.StockRow, 0, len(units))
	for i := range units {
		out = append(out, toStockRow(&units[i]))
	}
	return out, nil
}

func (s *stockService) Correct(ctx context.Context, unitID, adminUserID int64, in dto.StockCorrectRequest) (*dto.StockRow, error) {
	st := types.StockStatus(in.NewStatus)
	if !st.IsValid() {
		return nil, ErrInvalidStockStatus
	}
	if !types.ValidReason(in.Reason) {
		return nil, ErrReasonTooShort
	}
	unit, err := s.deps.Stock.Correct(ctx, unitID, st, in.Reason, adminUserID)
	if err != nil {
		return nil, err
	}
	logger.From(ctx).Info("stock corrected",
		logger.Any("stock_unit_id", unitID),
		logger.String("new_status", in.NewStatus),
		logger.UserID(adminUserID),
	)
	row := toStockRow(unit)
	return &row, nil
}

func toStockRow(u *repository.StockUnit) dto.StockRow {
	return dto.StockRow{
		ID:              u.ID,
		ProductID:       u.ProductID,
		ProductOptionID: u.ProductOptionID,
		Token:           u.Token,
		Status:          string(u.Status),
		Location:        u.Location,
		Note:            u.Note,
	}
}
