package tutorav1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "tutora.v1.BookingService"

const (
	BookingService_CreateAppointment_FullMethodName   = "/tutora.v1.BookingService/CreateAppointment"
	BookingService_ListAppointments_FullMethodName    = "/tutora.v1.BookingService/ListAppointments"
	BookingService_ConfirmAppointment_FullMethodName  = "/tutora.v1.BookingService/ConfirmAppointment"
	BookingService_RejectAppointment_FullMethodName   = "/tutora.v1.BookingService/RejectAppointment"
	BookingService_CompleteAppointment_FullMethodName = "/tutora.v1.BookingService/CompleteAppointment"
	BookingService_CancelAppointment_FullMethodName   = "/tutora.v1.BookingService/CancelAppointment"
	BookingService_ReplaceAvailability_FullMethodName = "/tutora.v1.BookingService/ReplaceAvailability"
	BookingService_GetAvailability_FullMethodName     = "/tutora.v1.BookingService/GetAvailability"
	BookingService_ListFreeSlots_FullMethodName       = "/tutora.v1.BookingService/ListFreeSlots"
)

type BookingServiceServer interface {
	CreateAppointment(context.Context, *CreateAppointmentRequest) (*CreateAppointmentResponse, error)
	ListAppointments(context.Context, *ListAppointmentsRequest) (*ListAppointmentsResponse, error)
	ConfirmAppointment(context.Context, *TransitionAppointmentRequest) (*TransitionAppointmentResponse, error)
	RejectAppointment(context.Context, *TransitionAppointmentRequest) (*TransitionAppointmentResponse, error)
	CompleteAppointment(context.Context, *TransitionAppointmentRequest) (*TransitionAppointmentResponse, error)
	CancelAppointment(context.Context, *TransitionAppointmentRequest) (*TransitionAppointmentResponse, error)
	ReplaceAvailability(context.Context, *ReplaceAvailabilityRequest) (*ReplaceAvailabilityResponse, error)
	GetAvailability(context.Context, *GetAvailabilityRequest) (*GetAvailabilityResponse, error)
	ListFreeSlots(context.Context, *ListFreeSlotsRequest) (*ListFreeSlotsResponse, error)
}

// UnimplementedBookingServiceServer can be embedded to keep servers
// compiling when methods are added.
type UnimplementedBookingServiceServer struct{}

func (UnimplementedBookingServiceServer) CreateAppointment(context.Context, *CreateAppointmentRequest) (*CreateAppointmentResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateAppointment not implemented")
}
func (UnimplementedBookingServiceServer) ListAppointments(context.Context, *ListAppointmentsRequest) (*ListAppointmentsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListAppointments not implemented")
}
func (UnimplementedBookingServiceServer) ConfirmAppointment(context.Context, *TransitionAppointmentRequest) (*TransitionAppointmentResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ConfirmAppointment not implemented")
}
func (UnimplementedBookingServiceServer) RejectAppointment(context.Context, *TransitionAppointmentRequest) (*TransitionAppointmentResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RejectAppointment not implemented")
}
func (UnimplementedBookingServiceServer) CompleteAppointment(context.Context, *TransitionAppointmentRequest) (*TransitionAppointmentResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CompleteAppointment not implemented")
}
func (UnimplementedBookingServiceServer) CancelAppointment(context.Context, *TransitionAppointmentRequest) (*TransitionAppointmentResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CancelAppointment not implemented")
}
func (UnimplementedBookingServiceServer) ReplaceAvailability(context.Context, *ReplaceAvailabilityRequest) (*ReplaceAvailabilityResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ReplaceAvailability not implemented")
}
func (UnimplementedBookingServiceServer) GetAvailability(context.Context, *GetAvailabilityRequest) (*GetAvailabilityResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetAvailability not implemented")
}
func (UnimplementedBookingServiceServer) ListFreeSlots(context.Context, *ListFreeSlotsRequest) (*ListFreeSlotsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListFreeSlots not implemented")
}

func RegisterBookingServiceServer(s grpc.ServiceRegistrar, srv BookingServiceServer) {
	s.RegisterService(&BookingService_ServiceDesc, srv)
}

func unaryHandler[Req, Resp any](fullMethod string, call func(BookingServiceServer, context.Context, *Req) (*Resp, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(BookingServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(BookingServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var BookingService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BookingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateAppointment", Handler: unaryHandler(BookingService_CreateAppointment_FullMethodName, BookingServiceServer.CreateAppointment)},
		{MethodName: "ListAppointments", Handler: unaryHandler(BookingService_ListAppointments_FullMethodName, BookingServiceServer.ListAppointments)},
		{MethodName: "ConfirmAppointment", Handler: unaryHandler(BookingService_ConfirmAppointment_FullMethodName, BookingServiceServer.ConfirmAppointment)},
		{MethodName: "RejectAppointment", Handler: unaryHandler(BookingService_RejectAppointment_FullMethodName, BookingServiceServer.RejectAppointment)},
		{MethodName: "CompleteAppointment", Handler: unaryHandler(BookingService_CompleteAppointment_FullMethodName, BookingServiceServer.CompleteAppointment)},
		{MethodName: "CancelAppointment", Handler: unaryHandler(BookingService_CancelAppointment_FullMethodName, BookingServiceServer.CancelAppointment)},
		{MethodName: "ReplaceAvailability", Handler: unaryHandler(BookingService_ReplaceAvailability_FullMethodName, BookingServiceServer.ReplaceAvailability)},
		{MethodName: "GetAvailability", Handler: unaryHandler(BookingService_GetAvailability_FullMethodName, BookingServiceServer.GetAvailability)},
		{MethodName: "ListFreeSlots", Handler: unaryHandler(BookingService_ListFreeSlots_FullMethodName, BookingServiceServer.ListFreeSlots)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "internal/rpc/tutora/v1",
}

type BookingServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewBookingServiceClient(cc grpc.ClientConnInterface) *BookingServiceClient {
	return &BookingServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookingServiceClient) CreateAppointment(ctx context.Context, in *CreateAppointmentRequest, opts ...grpc.CallOption) (*CreateAppointmentResponse, error) {
	return invoke[CreateAppointmentResponse](ctx, c.cc, BookingService_CreateAppointment_FullMethodName, in, opts)
}

func (c *BookingServiceClient) ListAppointments(ctx context.Context, in *ListAppointmentsRequest, opts ...grpc.CallOption) (*ListAppointmentsResponse, error) {
	return invoke[ListAppointmentsResponse](ctx, c.cc, BookingService_ListAppointments_FullMethodName, in, opts)
}

func (c *BookingServiceClient) ConfirmAppointment(ctx context.Context, in *TransitionAppointmentRequest, opts ...grpc.CallOption) (*TransitionAppointmentResponse, error) {
	return invoke[TransitionAppointmentResponse](ctx, c.cc, BookingService_ConfirmAppointment_FullMethodName, in, opts)
}

func (c *BookingServiceClient) RejectAppointment(ctx context.Context, in *TransitionAppointmentRequest, opts ...grpc.CallOption) (*TransitionAppointmentResponse, error) {
	return invoke[TransitionAppointmentResponse](ctx, c.cc, BookingService_RejectAppointment_FullMethodName, in, opts)
}

func (c *BookingServiceClient) CompleteAppointment(ctx context.Context, in *TransitionAppointmentRequest, opts ...grpc.CallOption) (*TransitionAppointmentResponse, error) {
	return invoke[TransitionAppointmentResponse](ctx, c.cc, BookingService_CompleteAppointment_FullMethodName, in, opts)
}

func (c *BookingServiceClient) CancelAppointment(ctx context.Context, in *TransitionAppointmentRequest, opts ...grpc.CallOption) (*TransitionAppointmentResponse, error) {
	return invoke[TransitionAppointmentResponse](ctx, c.cc, BookingService_CancelAppointment_FullMethodName, in, opts)
}

func (c *BookingServiceClient) ReplaceAvailability(ctx context.Context, in *ReplaceAvailabilityRequest, opts ...grpc.CallOption) (*ReplaceAvailabilityResponse, error) {
	return invoke[ReplaceAvailabilityResponse](ctx, c.cc, BookingService_ReplaceAvailability_FullMethodName, in, opts)
}

func (c *BookingServiceClient) GetAvailability(ctx context.Context, in *GetAvailabilityRequest, opts ...grpc.CallOption) (*GetAvailabilityResponse, error) {
	return invoke[GetAvailabilityResponse](ctx, c.cc, BookingService_GetAvailability_FullMethodName, in, opts)
}

func (c *BookingServiceClient) ListFreeSlots(ctx context.Context, in *ListFreeSlotsRequest, opts ...grpc.CallOption) (*ListFreeSlotsResponse, error) {
	return invoke[ListFreeSlotsResponse](ctx, c.cc, BookingService_ListFreeSlots_FullMethodName, in, opts)
}
