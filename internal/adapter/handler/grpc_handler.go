package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rl1809/storefront/internal/adapter/handler/adminrpc"
	"github.com/rl1809/storefront/internal/adapter/metrics"
	"github.com/rl1809/storefront/internal/core/service"
)

type GRPCHandler struct {
	inventory *service.InventoryService
	metrics   *metrics.Collector
}

func NewGRPCHandler(inventory *service.InventoryService, collector *metrics.Collector) *GRPCHandler {
	return &GRPCHandler{inventory: inventory, metrics: collector}
}

func (h *GRPCHandler) InventoryReport(ctx context.Context, req *adminrpc.InventoryReportRequest) (*adminrpc.InventoryReportResponse, error) {
	report, err := h.inventory.Report(ctx)
	if err != nil {
		return nil, fmt.Errorf("inventory report: %w", err)
	}
	return &adminrpc.InventoryReportResponse{Items: report}, nil
}

func (h *GRPCHandler) AddStock(ctx context.Context, req *adminrpc.AddStockRequest) (*adminrpc.AddStockResponse, error) {
	err := h.inventory.Restock(ctx, req.ItemID, req.Quantity)
	if err != nil {
		if errors.Is(err, service.ErrInvalidItem) || errors.Is(err, service.ErrInvalidQuantity) {
			return &adminrpc.AddStockResponse{
				Success: false,
				Message: "Enter a valid quantity.",
			}, nil
		}
		if errors.Is(err, service.ErrItemNotFound) {
			return &adminrpc.AddStockResponse{
				Success: false,
				Message: "Product not found.",
			}, nil
		}
		slog.Error("add stock failed", "item_id", req.ItemID, "err", err)
		return &adminrpc.AddStockResponse{
			Success: false,
			Message: "internal error",
		}, nil
	}

	h.metrics.ObserveRestock(req.Quantity)
	return &adminrpc.AddStockResponse{
		Success: true,
		Message: fmt.Sprintf("Added %d units to item %d.", req.Quantity, req.ItemID),
	}, nil
}
