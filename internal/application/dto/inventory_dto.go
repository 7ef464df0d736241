package dto

import (
	"time"

	"github.com/jhoicas/Obras-api/internal/domain/entity"
	"github.com/jhoicas/Obras-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// CreateMaterialRequest body para POST /api/inventory/materials.
type CreateMaterialRequest struct {
	Code      string           `json:"code"`
	Name      string           `json:"name"`
	Quantity  *decimal.Decimal `json:"quantity,omitempty"`
	Supplier  string           `json:"supplier"`
	UnitPrice decimal.Decimal  `json:"unit_price"`
	Unit      string           `json:"unit"`
	Location  string           `json:"location"`
	ImageURL  string           `json:"image_url"`
}

// UpdateMaterialRequest body para PUT /api/inventory/materials/:id. La cantidad no se acepta aquí.
type UpdateMaterialRequest struct {
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Supplier  string          `json:"supplier"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Unit      string          `json:"unit"`
	Location  string          `json:"location"`
	ImageURL  string          `json:"image_url"`
}

// MaterialResponse material en respuestas.
type MaterialResponse struct {
	ID        string          `json:"id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	Supplier  string          `json:"supplier"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Unit      string          `json:"unit"`
	Location  string          `json:"location"`
	ImageURL  string          `json:"image_url"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// MaterialFromEntity convierte la entidad.
func MaterialFromEntity(m *entity.Material) MaterialResponse {
	return MaterialResponse{
		ID:        m.ID,
		Code:      m.Code,
		Name:      m.Name,
		Quantity:  m.Quantity,
		Supplier:  m.Supplier,
		UnitPrice: m.UnitPrice,
		Unit:      m.Unit,
		Location:  m.Location,
		ImageURL:  m.ImageURL,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// MaterialsFromEntities convierte una lista (nunca null en JSON).
func MaterialsFromEntities(list []*entity.Material) []MaterialResponse {
	out := make([]MaterialResponse, 0, len(list))
	for _, m := range list {
		out = append(out, MaterialFromEntity(m))
	}
	return out
}

// MaterialListResponse página de materiales.
type MaterialListResponse struct {
	Materials []MaterialResponse `json:"materials"`
	Total     int                `json:"total"`
	Page      int                `json:"page"`
	PageSize  int                `json:"page_size"`
}

// StockInRequest body para POST /api/inventory/materials/:id/stock-in.
type StockInRequest struct {
	Quantity    decimal.Decimal `json:"quantity"`
	Description string          `json:"description"`
}

// StockOutRequest body para POST /api/inventory/materials/:id/stock-out.
type StockOutRequest struct {
	Quantity    decimal.Decimal `json:"quantity"`
	ProjectID   string          `json:"project_id"`
	Description string          `json:"description"`
}

// MovementResponse material con el saldo nuevo y el asiento creado.
type MovementResponse struct {
	Material   MaterialResponse `json:"material"`
	RecordID   string           `json:"record_id"`
	ActivityID string           `json:"activity_id,omitempty"`
}

// InventoryRecordResponse asiento del libro con nombres para mostrar.
type InventoryRecordResponse struct {
	ID           string          `json:"id"`
	Type         string          `json:"type"`
	Quantity     decimal.Decimal `json:"quantity"`
	Description  string          `json:"description"`
	CreatedAt    time.Time       `json:"created_at"`
	MaterialID   string          `json:"material_id,omitempty"`
	MaterialCode string          `json:"material_code"`
	MaterialName string          `json:"material_name"`
	OperatorID   string          `json:"operator_id"`
	OperatorName string          `json:"operator_name"`
	ProjectID    string          `json:"project_id,omitempty"`
	ProjectName  string          `json:"project_name,omitempty"`
}

// RecordListResponse página del libro.
type RecordListResponse struct {
	Records []InventoryRecordResponse `json:"records"`
	Total   int                       `json:"total"`
}

// RecordsFromViews convierte las vistas del repositorio.
func RecordsFromViews(list []repository.InventoryRecordView) []InventoryRecordResponse {
	out := make([]InventoryRecordResponse, 0, len(list))
	for _, v := range list {
		out = append(out, InventoryRecordResponse(v))
	}
	return out
}

// CustodianProjectResponse proyecto asignado al responsable de inventario.
type CustodianProjectResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ManagerID   string `json:"manager_id,omitempty"`
	ManagerName string `json:"manager_name,omitempty"`
}

// StatsResponse tablero del responsable de inventario.
type StatsResponse struct {
	ProjectCount  int                `json:"project_count"`
	StockInCount  int                `json:"stock_in_count"`
	StockOutCount int                `json:"stock_out_count"`
	LowStockCount int                `json:"low_stock_count"`
	LowStock      []MaterialResponse `json:"low_stock"`
}
