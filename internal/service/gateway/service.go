package gateway

import (
	"context"
	"encoding/json"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oggyb/swipematch/internal/api"
	"github.com/oggyb/swipematch/internal/app"
	"github.com/oggyb/swipematch/internal/db"
	"github.com/oggyb/swipematch/internal/logger"
)

// authorizationKey is the metadata key carrying "Bearer <token>".
const authorizationKey = "authorization"

// Service implements GatewayServer on top of the api dispatcher.
//
// Transport errors are reserved for envelopes that cannot be read. Every
// domain failure travels in the payload as {"error": {kind, message}}.
type Service struct {
	appCtx     *app.AppContext
	dispatcher *api.Dispatcher
}

// NewService creates the Gateway service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:     appCtx,
		dispatcher: api.NewDispatcher(appCtx),
	}
}

// Execute runs one operation.
//
// Behavior:
//   - Missing or non-string "operation", or non-object "args" → InvalidArgument.
//   - A valid bearer token sets the actor; a missing or bad one leaves it empty.
//   - The dispatcher result is encoded through JSON into a Struct.
func (s *Service) Execute(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := decodeRequest(in)
	if err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx, s.appCtx.Logger)
	req.Actor = s.actor(ctx)

	log.Debug("Execute called", "operation", req.Operation, "authenticated", req.Actor != nil)

	resp := s.dispatcher.Execute(ctx, req)
	out, err := encodeResponse(resp)
	if err != nil {
		log.Error("failed to encode response", "operation", req.Operation, "err", err)
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	return out, nil
}

func decodeRequest(in *structpb.Struct) (api.Request, error) {
	fields := in.GetFields()

	opVal, ok := fields["operation"]
	if !ok {
		return api.Request{}, status.Error(codes.InvalidArgument, "operation is required")
	}
	op, ok := opVal.GetKind().(*structpb.Value_StringValue)
	if !ok || strings.TrimSpace(op.StringValue) == "" {
		return api.Request{}, status.Error(codes.InvalidArgument, "operation must be a non-empty string")
	}

	args := api.Args{}
	if v, ok := fields["args"]; ok {
		switch kind := v.GetKind().(type) {
		case *structpb.Value_StructValue:
			args = kind.StructValue.AsMap()
		case *structpb.Value_NullValue:
		default:
			return api.Request{}, status.Error(codes.InvalidArgument, "args must be an object")
		}
	}
	return api.Request{Operation: strings.TrimSpace(op.StringValue), Args: args}, nil
}

func encodeResponse(resp api.Response) (*structpb.Struct, error) {
	if resp.Error != nil {
		return structpb.NewStruct(map[string]any{
			"error": map[string]any{
				"kind":    string(resp.Error.Kind),
				"message": resp.Error.Message,
			},
		})
	}

	b, err := json.Marshal(resp.Data)
	if err != nil {
		return nil, err
	}
	data := new(structpb.Value)
	if err := protojson.Unmarshal(b, data); err != nil {
		return nil, err
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{"data": data}}, nil
}

func (s *Service) actor(ctx context.Context) *db.User {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil
	}
	values := md.Get(authorizationKey)
	if len(values) == 0 || strings.TrimSpace(values[0]) == "" {
		return nil
	}
	u, err := s.dispatcher.Authenticate(ctx, values[0])
	if err != nil {
		logger.FromContext(ctx, s.appCtx.Logger).Debug("ignoring bearer token", "err", err)
		return nil
	}
	return u
}
