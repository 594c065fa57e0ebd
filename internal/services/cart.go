package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/aniscentsapp/aniscents/internal/db"
	"github.com/aniscentsapp/aniscents/internal/logging"
	"github.com/aniscentsapp/aniscents/internal/models"
)

var (
	ErrCartUnavailable  = errors.New("cart service unavailable")
	ErrProductNotFound  = errors.New("product not found")
	ErrCartItemNotFound = errors.New("cart item not found")
)

// CartIdentity names the cart owner: a signed-in user or an anonymous
// session, never both.
type CartIdentity struct {
	UserID     int64
	SessionKey string
}

func (id CartIdentity) valid() bool {
	return (id.UserID > 0) != (id.SessionKey != "")
}

type CartService struct {
	carts    *db.CartStore
	products *db.ProductStore
	coupons  *CouponService
	logger   *slog.Logger
}

func NewCartService(carts *db.CartStore, products *db.ProductStore, coupons *CouponService, logger *slog.Logger) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		coupons:  coupons,
		logger:   logger,
	}
}

func (s *CartService) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

// Resolve returns the identity's active cart, creating one on first use.
func (s *CartService) Resolve(ctx context.Context, identity CartIdentity) (*models.Cart, error) {
	if s == nil || s.carts == nil {
		return nil, ErrCartUnavailable
	}
	if !identity.valid() {
		return nil, fmt.Errorf("cart identity requires exactly one of user or session")
	}

	var cart *models.Cart
	var err error
	if identity.UserID > 0 {
		cart, err = s.carts.GetActiveByUser(ctx, identity.UserID)
	} else {
		cart, err = s.carts.GetActiveBySession(ctx, identity.SessionKey)
	}
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	cart = &models.Cart{
		UserID:         identity.UserID,
		SessionKey:     identity.SessionKey,
		ShippingMethod: models.ShippingStandard,
	}
	if createErr := s.carts.Create(ctx, cart); createErr != nil {
		return nil, fmt.Errorf("failed to create cart: %w", createErr)
	}
	return cart, nil
}

type AddItemInput struct {
	ProductID uuid.UUID
	VariantID uuid.UUID
	Quantity  int
}

// AddItem adds a product (optionally a specific variant) to the cart.
// Adding the same line again increments its quantity.
func (s *CartService) AddItem(ctx context.Context, cart *models.Cart, input AddItemInput) (*models.CartItem, error) {
	if s == nil || s.carts == nil || s.products == nil {
		return nil, ErrCartUnavailable
	}
	if input.Quantity <= 0 {
		input.Quantity = 1
	}

	product, err := s.products.GetByID(ctx, input.ProductID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if !product.IsAvailable {
		return nil, UserError{Message: fmt.Sprintf("%s is currently unavailable", product.Name)}
	}

	unitPrice := product.PriceKobo
	var variant *models.ProductVariant
	if input.VariantID != uuid.Nil {
		variant, err = s.products.GetVariant(ctx, input.VariantID)
		if errors.Is(err, db.ErrNotFound) {
			return nil, UserError{Message: "That product option no longer exists"}
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load variant: %w", err)
		}
		if variant.ProductID != product.ID {
			return nil, UserError{Message: "That product option no longer exists"}
		}
		unitPrice = variant.UnitPrice(product)
	}

	inCart, err := s.quantityInCart(ctx, cart.ID, input.ProductID, input.VariantID)
	if err != nil {
		return nil, err
	}
	if !product.InStock(inCart + input.Quantity) {
		return nil, UserError{Message: fmt.Sprintf("Only %d of %s left in stock", product.StockQuantity, product.Name)}
	}
	if variant != nil && !variant.InStock(inCart+input.Quantity) {
		return nil, UserError{Message: fmt.Sprintf("Only %d of that size left in stock", variant.StockQuantity)}
	}

	item := &models.CartItem{
		CartID:        cart.ID,
		ProductID:     input.ProductID,
		VariantID:     input.VariantID,
		UnitPriceKobo: unitPrice,
		Quantity:      input.Quantity,
	}
	if err := s.carts.AddItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}
	return item, nil
}

func (s *CartService) quantityInCart(ctx context.Context, cartID, productID, variantID uuid.UUID) (int, error) {
	items, err := s.carts.Items(ctx, cartID)
	if err != nil {
		return 0, fmt.Errorf("failed to load cart items: %w", err)
	}
	for _, item := range items {
		if item.ProductID == productID && item.VariantID == variantID {
			return item.Quantity, nil
		}
	}
	return 0, nil
}

// UpdateQuantity sets a line's quantity; zero removes the line.
func (s *CartService) UpdateQuantity(ctx context.Context, cart *models.Cart, itemID uuid.UUID, quantity int) error {
	if s == nil || s.carts == nil {
		return ErrCartUnavailable
	}
	if quantity < 0 {
		return UserError{Message: "Quantity cannot be negative"}
	}

	if quantity > 0 {
		items, err := s.carts.Items(ctx, cart.ID)
		if err != nil {
			return fmt.Errorf("failed to load cart items: %w", err)
		}
		for _, item := range items {
			if item.ID != itemID {
				continue
			}
			product, err := s.products.GetByID(ctx, item.ProductID)
			if err != nil {
				return fmt.Errorf("failed to load product: %w", err)
			}
			if !product.InStock(quantity) {
				return UserError{Message: fmt.Sprintf("Only %d of %s left in stock", product.StockQuantity, product.Name)}
			}
		}
	}

	err := s.carts.UpdateItemQuantity(ctx, cart.ID, itemID, quantity)
	if errors.Is(err, db.ErrNotFound) {
		return ErrCartItemNotFound
	}
	return err
}

func (s *CartService) RemoveItem(ctx context.Context, cart *models.Cart, itemID uuid.UUID) error {
	if s == nil || s.carts == nil {
		return ErrCartUnavailable
	}
	err := s.carts.RemoveItem(ctx, cart.ID, itemID)
	if errors.Is(err, db.ErrNotFound) {
		return ErrCartItemNotFound
	}
	return err
}

// ApplyCoupon validates the code against the current cart and attaches it.
func (s *CartService) ApplyCoupon(ctx context.Context, cart *models.Cart, identity CartIdentity, code string) (*models.Coupon, error) {
	if s == nil || s.carts == nil || s.coupons == nil {
		return nil, ErrCartUnavailable
	}

	coupon, err := s.coupons.Lookup(ctx, code)
	if err != nil {
		return nil, err
	}

	items, err := s.carts.Items(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart items: %w", err)
	}
	var subtotal int64
	for _, item := range items {
		subtotal += item.LineTotal()
	}

	if err := s.coupons.Validate(ctx, coupon, CouponContext{UserID: identity.UserID, SubtotalKobo: subtotal}); err != nil {
		return nil, err
	}

	if err := s.carts.SetCoupon(ctx, cart.ID, coupon.ID); err != nil {
		return nil, fmt.Errorf("failed to apply coupon: %w", err)
	}
	cart.CouponID = coupon.ID
	return coupon, nil
}

func (s *CartService) RemoveCoupon(ctx context.Context, cart *models.Cart) error {
	if s == nil || s.carts == nil {
		return ErrCartUnavailable
	}
	if err := s.carts.ClearCoupon(ctx, cart.ID); err != nil {
		return fmt.Errorf("failed to remove coupon: %w", err)
	}
	cart.CouponID = uuid.Nil
	return nil
}

func (s *CartService) SetGiftWrap(ctx context.Context, cart *models.Cart, enabled bool) error {
	if s == nil || s.carts == nil {
		return ErrCartUnavailable
	}
	fee := int64(0)
	if enabled {
		fee = GiftWrapFeeKobo
	}
	if err := s.carts.SetGiftWrap(ctx, cart.ID, enabled, fee); err != nil {
		return fmt.Errorf("failed to set gift wrap: %w", err)
	}
	cart.GiftWrap = enabled
	cart.GiftWrapKobo = fee
	return nil
}

func (s *CartService) SetShippingMethod(ctx context.Context, cart *models.Cart, code string) error {
	if s == nil || s.carts == nil {
		return ErrCartUnavailable
	}
	method := ShippingMethodByCode(code)
	if method == nil {
		return UserError{Message: "Unknown shipping method"}
	}
	if err := s.carts.SetShipping(ctx, cart.ID, method.Code, method.FeeKobo); err != nil {
		return fmt.Errorf("failed to set shipping method: %w", err)
	}
	cart.ShippingMethod = method.Code
	cart.ShippingKobo = method.FeeKobo
	return nil
}

// Clear empties the cart and drops any applied coupon.
func (s *CartService) Clear(ctx context.Context, cart *models.Cart) error {
	if s == nil || s.carts == nil {
		return ErrCartUnavailable
	}
	if err := s.carts.ClearItems(ctx, s.carts.Pool(), cart.ID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	if cart.HasCoupon() {
		if err := s.carts.ClearCoupon(ctx, cart.ID); err != nil {
			return fmt.Errorf("failed to clear coupon: %w", err)
		}
		cart.CouponID = uuid.Nil
	}
	return nil
}

// CartView is the cart with its lines and computed totals.
type CartView struct {
	Cart   *models.Cart       `json:"cart"`
	Items  []*models.CartItem `json:"items"`
	Coupon *models.Coupon     `json:"coupon,omitempty"`
	Totals models.CartTotals  `json:"totals"`
}

// View loads the cart lines and computes totals. A coupon that has become
// invalid since it was applied is dropped rather than failing the view.
func (s *CartService) View(ctx context.Context, cart *models.Cart, identity CartIdentity) (*CartView, error) {
	if s == nil || s.carts == nil {
		return nil, ErrCartUnavailable
	}

	items, err := s.carts.Items(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart items: %w", err)
	}

	view := &CartView{Cart: cart, Items: items}

	var subtotal int64
	for _, item := range items {
		subtotal += item.LineTotal()
	}

	var discount int64
	if cart.HasCoupon() {
		coupon, err := s.coupons.couponByID(ctx, cart.CouponID)
		if err != nil {
			return nil, err
		}
		validateErr := s.coupons.Validate(ctx, coupon, CouponContext{UserID: identity.UserID, SubtotalKobo: subtotal})
		var userErr UserError
		switch {
		case validateErr == nil:
			view.Coupon = coupon
			discount = s.coupons.Discount(coupon, items)
		case errors.As(validateErr, &userErr):
			s.loggerFromContext(ctx).Info("dropping invalid coupon from cart",
				"cart_id", cart.ID, "coupon_code", coupon.Code, "reason", userErr.Message)
			if clearErr := s.carts.ClearCoupon(ctx, cart.ID); clearErr != nil {
				return nil, fmt.Errorf("failed to drop invalid coupon: %w", clearErr)
			}
			cart.CouponID = uuid.Nil
		default:
			return nil, validateErr
		}
	}

	view.Totals = computeTotals(items, discount, cart.ShippingMethod, cart.GiftWrap)
	return view, nil
}

// MergeOnLogin folds the anonymous session cart into the user's cart. Called
// once after authentication succeeds.
func (s *CartService) MergeOnLogin(ctx context.Context, userID int64, sessionKey string) error {
	if s == nil || s.carts == nil {
		return ErrCartUnavailable
	}
	if userID <= 0 || sessionKey == "" {
		return nil
	}

	sessionCart, err := s.carts.GetActiveBySession(ctx, sessionKey)
	if errors.Is(err, db.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load session cart: %w", err)
	}

	userCart, err := s.Resolve(ctx, CartIdentity{UserID: userID})
	if err != nil {
		return err
	}

	if err := s.carts.Merge(ctx, sessionCart.ID, userCart.ID); err != nil {
		return fmt.Errorf("failed to merge carts: %w", err)
	}
	s.loggerFromContext(ctx).Info("merged session cart into user cart",
		"session_cart_id", sessionCart.ID, "user_cart_id", userCart.ID, "user_id", userID)
	return nil
}

// computeTotals derives the money summary from the lines and applied charges.
func computeTotals(items []*models.CartItem, discount int64, shippingMethod string, giftWrap bool) models.CartTotals {
	totals := models.CartTotals{DiscountKobo: discount}
	for _, item := range items {
		totals.SubtotalKobo += item.LineTotal()
		totals.ItemCount += item.Quantity
	}
	if totals.DiscountKobo > totals.SubtotalKobo {
		totals.DiscountKobo = totals.SubtotalKobo
	}

	discounted := totals.SubtotalKobo - totals.DiscountKobo
	if totals.ItemCount > 0 {
		totals.ShippingKobo = ShippingFee(shippingMethod, discounted)
	}
	if giftWrap {
		totals.GiftWrapKobo = GiftWrapFeeKobo
	}

	totals.TotalKobo = discounted + totals.ShippingKobo + totals.GiftWrapKobo
	return totals
}
