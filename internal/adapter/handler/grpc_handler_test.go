package handler

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/rl1809/storefront/internal/adapter/handler/adminrpc"
	"github.com/rl1809/storefront/internal/adapter/metrics"
	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
)

func newAdminClient(t *testing.T) (*adminrpc.AdminClient, *storage.MemoryAdapter, *metrics.Collector) {
	t.Helper()

	inv := storage.NewMemoryAdapter(
		domain.Item{ID: 1, Name: "Cottage Sofa", UnitPrice: decimal.RequireFromString("5500.00"), Bought: 10, Sold: 8},
	)
	collector := metrics.NewCollector()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	adminrpc.RegisterAdminServiceServer(srv, NewGRPCHandler(service.NewInventoryService(inv, nil), collector))
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return adminrpc.NewAdminClient(conn), inv, collector
}

func TestGRPC_InventoryReport(t *testing.T) {
	client, _, _ := newAdminClient(t)

	resp, err := client.InventoryReport(context.Background(), &adminrpc.InventoryReportRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 2, resp.Items[0].Stock)
	assert.True(t, resp.Items[0].Revenue.Equal(decimal.RequireFromString("44000")))
}

func TestGRPC_AddStock(t *testing.T) {
	client, inv, collector := newAdminClient(t)
	ctx := context.Background()

	resp, err := client.AddStock(ctx, &adminrpc.AddStockRequest{ItemID: 1, Quantity: 5})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "Added 5 units to item 1.", resp.Message)

	item, err := inv.GetItem(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 15, item.Bought)
	assert.Equal(t, 8, item.Sold)

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "storefront_restocked_units_total 5")
}

func TestGRPC_AddStock_Rejected(t *testing.T) {
	client, _, _ := newAdminClient(t)
	ctx := context.Background()

	resp, err := client.AddStock(ctx, &adminrpc.AddStockRequest{ItemID: 1, Quantity: -3})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "Enter a valid quantity.", resp.Message)

	resp, err = client.AddStock(ctx, &adminrpc.AddStockRequest{ItemID: 404, Quantity: 1})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "Product not found.", resp.Message)
}
