package types

// WarrantyEventType tipo de evento append-only en warranty_events.
type WarrantyEventType string

const (
	EventStatusChange         WarrantyEventType = "status_change"
	EventOwnerChange          WarrantyEventType = "owner_change"
	EventSuspend              WarrantyEventType = "suspend"
	EventUnsuspend            WarrantyEventType = "unsuspend"
	EventRevoke               WarrantyEventType = "revoke"
	EventOwnershipTransferred WarrantyEventType = "ownership_transferred"
)

// IsValid retorna true si el tipo de evento es conocido.
func (t WarrantyEventType) IsValid() bool {
	switch t {
	case EventStatusChange, EventOwnerChange, EventSuspend,
		EventUnsuspend, EventRevoke, EventOwnershipTransferred:
		return true
	}
	return false
}

// TransferStatus estado de una solicitud de transferencia de garantía.
type TransferStatus string

const (
	TransferRequested TransferStatus = "requested"
	TransferCompleted TransferStatus = "completed"
	TransferCancelled TransferStatus = "cancelled"
	TransferExpired   TransferStatus = "expired"
)

// InquiryStatus estado de una consulta de cliente.
type InquiryStatus string

const (
	InquiryNew        InquiryStatus = "new"
	InquiryInProgress InquiryStatus = "in_progress"
	InquiryAnswered   InquiryStatus = "answered"
	InquiryClosed     InquiryStatus = "closed"
)

// IsValid retorna true si el estado es conocido.
func (s InquiryStatus) IsValid() bool {
	switch s {
	case InquiryNew, InquiryInProgress, InquiryAnswered, InquiryClosed:
		return true
	}
	return false
}

// OrderStatus estado agregado de una orden (derivado de sus unidades).
type OrderStatus string

const (
	OrderPending           OrderStatus = "pending"
	OrderPaid              OrderStatus = "paid"
	OrderShipped           OrderStatus = "shipped"
	OrderDelivered         OrderStatus = "delivered"
	OrderPartiallyRefunded OrderStatus = "partially_refunded"
	OrderRefunded          OrderStatus = "refunded"
	OrderCancelled         OrderStatus = "cancelled"
)

// UnitStatus estado de una unidad individual dentro de una orden.
type UnitStatus string

const (
	UnitAllocated UnitStatus = "allocated"
	UnitShipped   UnitStatus = "shipped"
	UnitDelivered UnitStatus = "delivered"
	UnitRefunded  UnitStatus = "refunded"
)

// StockStatus estado de una unidad física de stock.
type StockStatus string

const (
	StockInStock  StockStatus = "in_stock"
	StockReserved StockStatus = "reserved"
	StockSold     StockStatus = "sold"
)

// IsValid retorna true si el estado es conocido.
func (s StockStatus) IsValid() bool {
	switch s {
	case StockInStock, StockReserved, StockSold:
		return true
	}
	return false
}
