package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"soukly-backend/internal/domain"
	"soukly-backend/pkg/cache"
)

// CartUsecase keeps session carts in the in-memory cache and applies the pure
// cart reducers. The single-supplier invariant lives entirely in the reducers;
// this layer only resolves products and promo codes.
type CartUsecase struct {
	productRepo domain.ProductRepository
	partnerRepo domain.PartnerRepository
	configRepo  domain.ConfigRepository
	store       cache.CacheService
	ttl         time.Duration
}

func NewCartUsecase(productRepo domain.ProductRepository, partnerRepo domain.PartnerRepository, configRepo domain.ConfigRepository, store cache.CacheService, ttl time.Duration) *CartUsecase {
	return &CartUsecase{
		productRepo: productRepo,
		partnerRepo: partnerRepo,
		configRepo:  configRepo,
		store:       store,
		ttl:         ttl,
	}
}

func cartKey(sessionID string) string {
	return "cart:" + sessionID
}

func (u *CartUsecase) Get(sessionID string) domain.Cart {
	if v, ok := u.store.Get(cartKey(sessionID)); ok {
		if cart, ok := v.(domain.Cart); ok {
			return cart
		}
	}
	return domain.Cart{}
}

func (u *CartUsecase) save(sessionID string, cart domain.Cart) domain.Cart {
	u.store.Set(cartKey(sessionID), cart, u.ttl)
	return cart
}

func (u *CartUsecase) Clear(sessionID string) {
	u.store.Delete(cartKey(sessionID))
}

// Add resolves the product and runs the TryAdd reducer. On a supplier
// conflict the cart is returned untouched with the pending product attached;
// the caller resolves it via Resolve.
func (u *CartUsecase) Add(ctx context.Context, sessionID, productID string, quantity int) (domain.Cart, bool, error) {
	if quantity <= 0 {
		quantity = 1
	}
	product, err := u.productRepo.GetByID(ctx, productID)
	if err != nil {
		return domain.Cart{}, false, fmt.Errorf("product not found: %w", err)
	}
	if !product.Active {
		return domain.Cart{}, false, fmt.Errorf("product %s is unavailable", product.Name)
	}

	item := domain.CartItem{
		ProductID:  product.ID,
		SupplierID: product.SupplierID,
		Name:       product.Name,
		Quantity:   quantity,
		UnitPrice:  product.SellingPrice,
	}

	cart, conflict := domain.TryAdd(u.Get(sessionID), item)
	if conflict {
		slog.Info("Usecase: Add - supplier conflict", "session_id", sessionID, "cart_supplier", cart.SupplierID(), "product_supplier", product.SupplierID)
	}
	return u.save(sessionID, cart), conflict, nil
}

// Resolve settles a pending supplier conflict. action is "replace" or "cancel".
func (u *CartUsecase) Resolve(sessionID, action string) (domain.Cart, error) {
	cart := u.Get(sessionID)
	switch action {
	case "replace":
		cart = domain.ResolveReplace(cart)
	case "cancel":
		cart = domain.ResolveCancel(cart)
	default:
		return cart, fmt.Errorf("unknown resolution %q", action)
	}
	return u.save(sessionID, cart), nil
}

func (u *CartUsecase) UpdateQuantity(sessionID, productID string, quantity int) domain.Cart {
	return u.save(sessionID, domain.UpdateQuantity(u.Get(sessionID), productID, quantity))
}

func (u *CartUsecase) Remove(sessionID, productID string) domain.Cart {
	return u.save(sessionID, domain.RemoveItem(u.Get(sessionID), productID))
}

// ApplyPromo validates the code against the partner directory and attaches
// the flat configured discount. Commission is NOT fixed here: it is looked up
// from the partner's level at checkout time and frozen into the order.
func (u *CartUsecase) ApplyPromo(ctx context.Context, sessionID, code string) (domain.Cart, error) {
	cart := u.Get(sessionID)
	if len(cart.Items) == 0 {
		return cart, domain.ErrEmptyCart
	}

	partner, err := u.partnerRepo.GetByPromoCode(ctx, code)
	if err != nil {
		return cart, domain.ErrInvalidPromoCode
	}

	settings, err := u.configRepo.GetSettings(ctx)
	if err != nil {
		return cart, fmt.Errorf("load settings: %w", err)
	}

	cart = domain.ApplyPromo(cart, domain.CartPromo{
		Code:      partner.PromoCode,
		PartnerID: partner.ID,
		Discount:  settings.PromoDiscount,
	})
	return u.save(sessionID, cart), nil
}
