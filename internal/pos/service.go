package pos

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/officina-pos/officina/internal/catalog"
	"github.com/officina-pos/officina/internal/loyalty"
	"github.com/officina-pos/officina/internal/platform/httpx"
)

// Service runs purchases for loyalty customers. Stock and customer totals
// change inside a single transaction per purchase.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs the POS Service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// PurchaseMedicament sells one unit of the named medicament to the customer.
func (s *Service) PurchaseMedicament(ctx context.Context, input MedicamentPurchaseInput) (PurchaseResult, error) {
	requestID, err := resolveRequestID(input.RequestID)
	if err != nil {
		return PurchaseResult{}, err
	}

	var result PurchaseResult
	var customerName string
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		item, err := tx.MedicamentByName(ctx, input.Name)
		if err != nil {
			return err
		}
		customer, err := tx.CustomerByCIN(ctx, input.CIN)
		if err != nil {
			return err
		}
		customerName = customer.FullName()

		price, bonus, err := settle(item, item.Stock, customer)
		if err != nil {
			return err
		}

		if err := tx.SetMedicamentStock(ctx, item.Code, item.Stock-1); err != nil {
			return err
		}
		if err := tx.SaveCustomerTotals(ctx, customer); err != nil {
			return err
		}

		result = PurchaseResult{
			Item:           item.Name,
			PricePaid:      price,
			BonusApplied:   bonus,
			RemainingStock: item.Stock - 1,
			CustomerTotal:  customer.TotalPurchases,
			RequestID:      requestID,
		}
		return nil
	})
	if err != nil {
		return PurchaseResult{}, err
	}

	s.logger.Info("medicament sold",
		slog.String("item", result.Item),
		slog.String("customer", customerName),
		slog.Int64("cin", input.CIN),
		slog.Float64("price", result.PricePaid),
		slog.Bool("bonus", result.BonusApplied),
		slog.String("request_id", requestID))
	return result, nil
}

// PurchaseDevice sells one unit of the device to the customer. Loyal customers
// pay the first of three installments.
func (s *Service) PurchaseDevice(ctx context.Context, input DevicePurchaseInput) (PurchaseResult, error) {
	requestID, err := resolveRequestID(input.RequestID)
	if err != nil {
		return PurchaseResult{}, err
	}

	var result PurchaseResult
	var customerName string
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		item, err := tx.DeviceByCode(ctx, input.Code)
		if err != nil {
			return err
		}
		customer, err := tx.CustomerByCIN(ctx, input.CIN)
		if err != nil {
			return err
		}
		customerName = customer.FullName()

		price, bonus, err := settle(item, item.Stock, customer)
		if err != nil {
			return err
		}

		if err := tx.SetDeviceStock(ctx, item.Code, item.Stock-1); err != nil {
			return err
		}
		if err := tx.SaveCustomerTotals(ctx, customer); err != nil {
			return err
		}

		result = PurchaseResult{
			Item:           item.Name,
			PricePaid:      price,
			BonusApplied:   bonus,
			RemainingStock: item.Stock - 1,
			CustomerTotal:  customer.TotalPurchases,
			RequestID:      requestID,
		}
		return nil
	})
	if err != nil {
		return PurchaseResult{}, err
	}

	s.logger.Info("device sold",
		slog.Int64("code", input.Code),
		slog.String("customer", customerName),
		slog.Int64("cin", input.CIN),
		slog.Float64("price", result.PricePaid),
		slog.Bool("bonus", result.BonusApplied),
		slog.String("request_id", requestID))
	return result, nil
}

// QuoteBasket prices a basket at loyal-customer rates without touching stock
// or loyalty totals. The bonus discount is never part of a quote since it
// depends on purchase order.
func (s *Service) QuoteBasket(ctx context.Context, lines []QuoteLine) (Quote, error) {
	if len(lines) == 0 {
		return Quote{}, fmt.Errorf("%w: empty basket", httpx.ErrValidation)
	}

	quote := Quote{Lines: make([]QuoteLinePrice, 0, len(lines))}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		for _, line := range lines {
			var item catalog.Sellable
			switch line.Kind {
			case "medicament":
				m, err := tx.MedicamentByName(ctx, line.Name)
				if err != nil {
					return err
				}
				item = *m
			case "device":
				d, err := tx.DeviceByCode(ctx, line.Code)
				if err != nil {
					return err
				}
				item = *d
			default:
				return fmt.Errorf("%w: unknown line kind %q", httpx.ErrValidation, line.Kind)
			}

			price := item.Tranche(true)
			quote.Lines = append(quote.Lines, QuoteLinePrice{Item: item.DisplayName(), Price: price})
			quote.Total += price
		}
		return nil
	})
	if err != nil {
		return Quote{}, err
	}
	return quote, nil
}

// settle applies the purchase pricing pipeline to one unit: the stock gate,
// the loyalty tranche, then the threshold bonus with its reset before the new
// amount accumulates.
func settle(item catalog.Sellable, stock int, customer *loyalty.Customer) (float64, bool, error) {
	if stock <= 0 {
		return 0, false, &OutOfStockError{Item: item.DisplayName(), Available: stock, Requested: 1}
	}

	price := item.Tranche(true)
	bonus := false
	if customer.EligibleForBonus() {
		price *= bonusRate
		customer.ResetPurchases()
		bonus = true
	}
	customer.AddPurchase(price)
	return price, bonus, nil
}

func resolveRequestID(raw string) (string, error) {
	if raw == "" {
		return uuid.NewString(), nil
	}
	if _, err := uuid.Parse(raw); err != nil {
		return "", fmt.Errorf("%w: request id must be a uuid", httpx.ErrValidation)
	}
	return raw, nil
}
