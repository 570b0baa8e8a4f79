package grpcserver

import (
	"context"

	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"google.golang.org/grpc"
)

const serviceName = "witnessd.Catchup"

// Full method names of the catchup service
const (
	methodGetCatchupChain = "/" + serviceName + "/GetCatchupChain"
	methodGetWitnessProof = "/" + serviceName + "/GetWitnessProof"
	methodGetHashTree     = "/" + serviceName + "/GetHashTree"
	methodGetJoint        = "/" + serviceName + "/GetJoint"
	methodGetFreeUnits    = "/" + serviceName + "/GetFreeUnits"
)

// catchupService is what the catchup gRPC service serves
type catchupService interface {
	GetCatchupChain(ctx context.Context, request *externalapi.CatchupRequest) (*externalapi.CatchupChain, error)
	GetWitnessProof(ctx context.Context, request *WitnessProofRequest) (*WitnessProofResponse, error)
	GetHashTree(ctx context.Context, request *externalapi.HashTreeRequest) (*externalapi.HashTreeResponse, error)
	GetJoint(ctx context.Context, request *JointRequest) (*externalapi.DomainJoint, error)
	GetFreeUnits(ctx context.Context, request *FreeUnitsRequest) (*FreeUnitsResponse, error)
}

var catchupServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*catchupService)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetCatchupChain",
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error,
				interceptor grpc.UnaryServerInterceptor) (interface{}, error) {

				request := new(externalapi.CatchupRequest)
				return handleUnary(srv, ctx, dec, interceptor, request, methodGetCatchupChain,
					func(ctx context.Context, service catchupService) (interface{}, error) {
						return service.GetCatchupChain(ctx, request)
					})
			},
		},
		{
			MethodName: "GetWitnessProof",
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error,
				interceptor grpc.UnaryServerInterceptor) (interface{}, error) {

				request := new(WitnessProofRequest)
				return handleUnary(srv, ctx, dec, interceptor, request, methodGetWitnessProof,
					func(ctx context.Context, service catchupService) (interface{}, error) {
						return service.GetWitnessProof(ctx, request)
					})
			},
		},
		{
			MethodName: "GetHashTree",
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error,
				interceptor grpc.UnaryServerInterceptor) (interface{}, error) {

				request := new(externalapi.HashTreeRequest)
				return handleUnary(srv, ctx, dec, interceptor, request, methodGetHashTree,
					func(ctx context.Context, service catchupService) (interface{}, error) {
						return service.GetHashTree(ctx, request)
					})
			},
		},
		{
			MethodName: "GetJoint",
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error,
				interceptor grpc.UnaryServerInterceptor) (interface{}, error) {

				request := new(JointRequest)
				return handleUnary(srv, ctx, dec, interceptor, request, methodGetJoint,
					func(ctx context.Context, service catchupService) (interface{}, error) {
						return service.GetJoint(ctx, request)
					})
			},
		},
		{
			MethodName: "GetFreeUnits",
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error,
				interceptor grpc.UnaryServerInterceptor) (interface{}, error) {

				request := new(FreeUnitsRequest)
				return handleUnary(srv, ctx, dec, interceptor, request, methodGetFreeUnits,
					func(ctx context.Context, service catchupService) (interface{}, error) {
						return service.GetFreeUnits(ctx, request)
					})
			},
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "catchup",
}

func handleUnary(srv interface{}, ctx context.Context, dec func(interface{}) error,
	interceptor grpc.UnaryServerInterceptor, request interface{}, fullMethod string,
	call func(ctx context.Context, service catchupService) (interface{}, error)) (interface{}, error) {

	err := dec(request)
	if err != nil {
		return nil, err
	}
	service := srv.(catchupService)
	if interceptor == nil {
		return call(ctx, service)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
	handler := func(ctx context.Context, _ interface{}) (interface{}, error) {
		return call(ctx, service)
	}
	return interceptor(ctx, request, info, handler)
}
