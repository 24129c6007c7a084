package handlers

import (
	"storefront/internal/config"
	"storefront/internal/money"
	"storefront/internal/payments"
	"storefront/internal/services"
)

type Deps struct {
	Orders *services.OrderService
	Tasks  *services.Background

	OrderHandler   *OrderHandler
	PaymentHandler *PaymentHandler
	ProductHandler *ProductHandler
	CartHandler    *CartHandler
	ReviewHandler  *ReviewHandler
	FunnelHandler  *FunnelHandler
}

func NewDeps(st services.Stores, gw payments.Gateway, n services.Notifier, cfg config.Config) (*Deps, error) {
	rule, err := money.ParseShipping(cfg.Shipping.FreeThreshold, cfg.Shipping.Fee)
	if err != nil {
		return nil, err
	}
	tasks := services.NewBackground()

	orderSvc := services.NewOrderService(st, gw, n, tasks, services.OrderConfig{
		Currency:       cfg.Payments.Currency,
		Shipping:       rule,
		DecrementStock: cfg.Orders.DecrementStock,
	})
	catalogSvc := services.NewCatalogService(st.Products)
	cartSvc := services.NewCartService(st.Carts, st.Products)
	reviewSvc := services.NewReviewService(st.Reviews, st.Products)
	funnelSvc := services.NewFunnelService(st.Funnel, n, tasks)

	return &Deps{
		Orders:         orderSvc,
		Tasks:          tasks,
		OrderHandler:   &OrderHandler{Order: orderSvc},
		PaymentHandler: &PaymentHandler{Order: orderSvc},
		ProductHandler: &ProductHandler{Catalog: catalogSvc},
		CartHandler:    &CartHandler{Cart: cartSvc},
		ReviewHandler:  &ReviewHandler{Reviews: reviewSvc},
		FunnelHandler:  &FunnelHandler{Funnel: funnelSvc},
	}, nil
}
