// Package server exposes table ingestion and queries over gRPC.
//
// Messages are google.protobuf.Struct documents, so the service is described
// at runtime rather than generated from a .proto file.
package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ProtoPackage = "xltables.v1"
	ServiceName  = ProtoPackage + ".TablesService"
	protoFile    = "xltables/v1/tables.proto"
)

// TablesServer is the server API for xltables.v1.TablesService.
type TablesServer interface {
	UploadWorkbook(context.Context, *structpb.Struct) (*structpb.Struct, error)
	IngestPath(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListTables(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetTableDetails(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DebugTable(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RowSum(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RowStats(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExportTables(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListIngestions(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetIngestion(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod struct {
	name string
	call func(TablesServer, context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var unaryMethods = []unaryMethod{
	{"UploadWorkbook", TablesServer.UploadWorkbook},
	{"IngestPath", TablesServer.IngestPath},
	{"ListTables", TablesServer.ListTables},
	{"GetTableDetails", TablesServer.GetTableDetails},
	{"DebugTable", TablesServer.DebugTable},
	{"RowSum", TablesServer.RowSum},
	{"RowStats", TablesServer.RowStats},
	{"ExportTables", TablesServer.ExportTables},
	{"ListIngestions", TablesServer.ListIngestions},
	{"GetIngestion", TablesServer.GetIngestion},
}

// TablesServiceDesc is the grpc.ServiceDesc for xltables.v1.TablesService.
var TablesServiceDesc = serviceDesc()

func serviceDesc() grpc.ServiceDesc {
	desc := grpc.ServiceDesc{
		ServiceName: ServiceName,
		HandlerType: (*TablesServer)(nil),
		Streams:     []grpc.StreamDesc{},
		Metadata:    protoFile,
	}
	for _, m := range unaryMethods {
		desc.Methods = append(desc.Methods, grpc.MethodDesc{
			MethodName: m.name,
			Handler:    unaryHandler(m),
		})
	}
	return desc
}

func unaryHandler(m unaryMethod) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	fullMethod := "/" + ServiceName + "/" + m.name
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return m.call(srv.(TablesServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return m.call(srv.(TablesServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func RegisterTablesServer(s grpc.ServiceRegistrar, srv TablesServer) {
	s.RegisterService(&TablesServiceDesc, srv)
}

// Client calls xltables.v1.TablesService methods by name.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Call invokes method with req and returns the decoded response document.
func (c *Client) Call(ctx context.Context, method string, req map[string]any, opts ...grpc.CallOption) (map[string]any, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}

// The service descriptor is registered so reflection clients can describe it.
func init() {
	fd, err := protodesc.NewFile(fileDescriptorProto(), protoregistry.GlobalFiles)
	if err != nil {
		panic(err)
	}
	if err := protoregistry.GlobalFiles.RegisterFile(fd); err != nil {
		panic(err)
	}
}

func fileDescriptorProto() *descriptorpb.FileDescriptorProto {
	structType := "." + string((&structpb.Struct{}).ProtoReflect().Descriptor().FullName())
	methods := make([]*descriptorpb.MethodDescriptorProto, 0, len(unaryMethods))
	for _, m := range unaryMethods {
		methods = append(methods, &descriptorpb.MethodDescriptorProto{
			Name:       proto.String(m.name),
			InputType:  proto.String(structType),
			OutputType: proto.String(structType),
		})
	}
	return &descriptorpb.FileDescriptorProto{
		Name:       proto.String(protoFile),
		Package:    proto.String(ProtoPackage),
		Dependency: []string{"google/protobuf/struct.proto"},
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name:   proto.String("TablesService"),
			Method: methods,
		}},
		Syntax: proto.String("proto3"),
	}
}
