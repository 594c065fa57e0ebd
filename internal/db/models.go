package db

import "github.com/aniscentsapp/aniscents/internal/models"

type Category = models.Category
type Brand = models.Brand
type Product = models.Product
type ProductVariant = models.ProductVariant
type Cart = models.Cart
type CartItem = models.CartItem
type Coupon = models.Coupon
type CouponUsage = models.CouponUsage
type Order = models.Order
type OrderItem = models.OrderItem
type OrderStatus = models.OrderStatus
type PaymentStatus = models.PaymentStatus
type Payment = models.Payment
type PaymentMethod = models.PaymentMethod
type User = models.User
type Review = models.Review
type Feedback = models.Feedback
type ContentBlock = models.ContentBlock
type NewsletterSubscriber = models.NewsletterSubscriber

const (
	StatusPending    = models.StatusPending
	StatusConfirmed  = models.StatusConfirmed
	StatusProcessing = models.StatusProcessing
	StatusShipped    = models.StatusShipped
	StatusDelivered  = models.StatusDelivered
	StatusCancelled  = models.StatusCancelled
	StatusRefunded   = models.StatusRefunded
	StatusFailed     = models.StatusFailed
)
