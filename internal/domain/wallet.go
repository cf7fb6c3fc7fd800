package domain

import (
	"time"
)

// TransferKind classifies why coins moved.
type TransferKind string

const (
	TransferKindGift     TransferKind = "gift"
	TransferKindDonation TransferKind = "donation"
	TransferKindOrder    TransferKind = "order"
	TransferKindGrant    TransferKind = "grant"
	TransferKindRefund   TransferKind = "refund"
)

// TransferModel is the GORM model for the transfers table.
// Rows are written exactly once per successful transfer and never
// updated or deleted; refunds are new opposite-direction rows.
type TransferModel struct {
	ID         string    `gorm:"type:varchar(36);primaryKey"`
	SenderID   string    `gorm:"type:varchar(36);index;not null"`
	ReceiverID string    `gorm:"type:varchar(36);index;not null"`
	Amount     int64     `gorm:"not null"`
	Kind       string    `gorm:"type:varchar(20);not null"`
	StreamID   *string   `gorm:"type:varchar(36);index"`
	GiftID     *string   `gorm:"type:varchar(36)"`
	OrderID    *string   `gorm:"type:varchar(36)"`
	Message    string    `gorm:"type:varchar(500)"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

// TableName specifies the table name for TransferModel.
func (TransferModel) TableName() string {
	return "transfers"
}

// ToDomain converts TransferModel to domain Transfer.
func (m *TransferModel) ToDomain() *Transfer {
	return &Transfer{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Amount:     m.Amount,
		Kind:       TransferKind(m.Kind),
		StreamID:   m.StreamID,
		GiftID:     m.GiftID,
		OrderID:    m.OrderID,
		Message:    m.Message,
		CreatedAt:  m.CreatedAt,
	}
}

// Transfer is the immutable audit record of one coin movement.
type Transfer struct {
	ID         string       `json:"id"`
	SenderID   string       `json:"sender_id"`
	ReceiverID string       `json:"receiver_id"`
	Amount     int64        `json:"amount"`
	Kind       TransferKind `json:"kind"`
	StreamID   *string      `json:"stream_id,omitempty"`
	GiftID     *string      `json:"gift_id,omitempty"`
	OrderID    *string      `json:"order_id,omitempty"`
	Message    string       `json:"message,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}

// GiftModel is the GORM model for the gift catalog.
type GiftModel struct {
	ID        string    `gorm:"type:varchar(36);primaryKey"`
	Name      string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	Price     int64     `gorm:"not null"`
	IconKey   string    `gorm:"type:varchar(255)"`
	Active    bool      `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GiftModel.
func (GiftModel) TableName() string {
	return "gifts"
}

// ToDomain converts GiftModel to domain Gift.
func (m *GiftModel) ToDomain() *Gift {
	return &Gift{
		ID:      m.ID,
		Name:    m.Name,
		Price:   m.Price,
		IconKey: m.IconKey,
		Active:  m.Active,
	}
}

// Gift is one entry of the platform gift catalog.
type Gift struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Price   int64  `json:"price"`
	IconKey string `json:"icon_key,omitempty"`
	Active  bool   `json:"active"`
}

// SendGiftRequest represents a send gift request.
type SendGiftRequest struct {
	GiftID   string `json:"gift_id" binding:"required"`
	StreamID string `json:"stream_id" binding:"required"`
	Message  string `json:"message" binding:"max=500"`
}

// DonateRequest represents a direct donation request.
type DonateRequest struct {
	ReceiverID string `json:"receiver_id" binding:"required"`
	Amount     int64  `json:"amount" binding:"required"`
	StreamID   string `json:"stream_id"`
	Message    string `json:"message" binding:"max=500"`
}

// GrantCoinsRequest represents an admin coin grant request.
type GrantCoinsRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	Amount  int64  `json:"amount" binding:"required"`
	Message string `json:"message" binding:"max=500"`
}

// BalanceResponse carries a user's current coin balance.
type BalanceResponse struct {
	UserID      string `json:"user_id"`
	CoinBalance int64  `json:"coin_balance"`
}

// ListTransfersResponse is a paginated transfer history.
type ListTransfersResponse struct {
	Transfers []Transfer `json:"transfers"`
	Total     int        `json:"total"`
	Page      int        `json:"page"`
	PageSize  int        `json:"page_size"`
}
