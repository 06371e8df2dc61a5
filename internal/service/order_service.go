package service

import (
	"errors"
	"time"

	"redvital/internal/domain"
	"redvital/internal/models"
	"redvital/internal/repository"
	"redvital/pkg/exchange"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrEmptyOrder      = errors.New("order has no lines")
	ErrProductNotFound = errors.New("product not found or inactive")
)

// OrderService builds orders with frozen line snapshots; later catalog price
// changes never touch an existing order.
type OrderService struct {
	orderRepo   *repository.OrderRepository
	productRepo *repository.ProductRepository
	memberRepo  *repository.MemberRepository
	converter   exchange.Converter
	now         func() time.Time
}

func NewOrderService(orderRepo *repository.OrderRepository, productRepo *repository.ProductRepository, memberRepo *repository.MemberRepository, converter exchange.Converter) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		memberRepo:  memberRepo,
		converter:   converter,
		now:         time.Now,
	}
}

type CheckoutLine struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// Checkout creates a PENDING_PAYMENT order for the member, pricing each line
// in the member's currency at today's rate.
func (s *OrderService) Checkout(memberID uint, lines []CheckoutLine) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}
	member, err := s.memberRepo.GetByID(memberID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, len(lines))
	for i, l := range lines {
		ids[i] = l.ProductID
	}
	products, err := s.productRepo.GetByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	order := &models.Order{
		MemberID: member.ID,
		Status:   domain.OrderStatusPendingPayment,
		Currency: member.Currency,
	}
	asOf := s.now()
	for _, l := range lines {
		p, ok := byID[l.ProductID]
		if !ok {
			return nil, ErrProductNotFound
		}
		unitPrice, _, err := s.converter.Convert(p.Price, domain.BaseCurrency, member.Currency, asOf)
		if err != nil {
			return nil, err
		}
		qty := decimal.NewFromInt(int64(l.Quantity))
		line := models.OrderLine{
			ProductID:  p.ID,
			Name:       p.Name,
			IsKit:      p.IsKit,
			Quantity:   l.Quantity,
			UnitPrice:  unitPrice,
			UnitPV:     p.PV,
			UnitVN:     p.VN,
			TotalPrice: unitPrice.Mul(qty),
			TotalPV:    p.PV.Mul(qty),
			TotalVN:    p.VN.Mul(qty),
		}
		order.Lines = append(order.Lines, line)
		order.TotalAmount = order.TotalAmount.Add(line.TotalPrice)
		order.TotalPV = order.TotalPV.Add(line.TotalPV)
		order.TotalVN = order.TotalVN.Add(line.TotalVN)
	}
	if err := s.orderRepo.Create(order); err != nil {
		return nil, err
	}
	return order, nil
}

// GetOwned returns the order if it belongs to the member.
func (s *OrderService) GetOwned(memberID, orderID uint) (*models.Order, error) {
	o, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if o.MemberID != memberID {
		return nil, ErrOrderNotFound
	}
	return o, nil
}
