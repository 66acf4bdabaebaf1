// Package adminrpc defines the storefront admin gRPC service. Messages are
// plain structs carried by a JSON codec instead of generated protobuf types.
package adminrpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/rl1809/storefront/internal/core/domain"
)

const (
	ServiceName = "storefront.v1.AdminService"

	inventoryReportMethod = "/" + ServiceName + "/InventoryReport"
	addStockMethod        = "/" + ServiceName + "/AddStock"
)

type InventoryReportRequest struct{}

type InventoryReportResponse struct {
	Items []domain.StockReport `json:"items"`
}

type AddStockRequest struct {
	ItemID   int64 `json:"item_id"`
	Quantity int   `json:"quantity"`
}

type AddStockResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type AdminServer interface {
	InventoryReport(context.Context, *InventoryReportRequest) (*InventoryReportResponse, error)
	AddStock(context.Context, *AddStockRequest) (*AddStockResponse, error)
}

func RegisterAdminServiceServer(s grpc.ServiceRegistrar, srv AdminServer) {
	s.RegisterService(&ServiceDesc, srv)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AdminServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "InventoryReport", Handler: inventoryReportHandler},
		{MethodName: "AddStock", Handler: addStockHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "storefront/v1/admin",
}

func inventoryReportHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(InventoryReportRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AdminServer).InventoryReport(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: inventoryReportMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AdminServer).InventoryReport(ctx, req.(*InventoryReportRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func addStockHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(AddStockRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AdminServer).AddStock(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: addStockMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AdminServer).AddStock(ctx, req.(*AddStockRequest))
	}
	return interceptor(ctx, in, info, handler)
}

type AdminClient struct {
	conn grpc.ClientConnInterface
}

func NewAdminClient(conn grpc.ClientConnInterface) *AdminClient {
	return &AdminClient{conn: conn}
}

func (c *AdminClient) InventoryReport(ctx context.Context, in *InventoryReportRequest, opts ...grpc.CallOption) (*InventoryReportResponse, error) {
	out := new(InventoryReportResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.conn.Invoke(ctx, inventoryReportMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AdminClient) AddStock(ctx context.Context, in *AddStockRequest, opts ...grpc.CallOption) (*AddStockResponse, error) {
	out := new(AddStockResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.conn.Invoke(ctx, addStockMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
