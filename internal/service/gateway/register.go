package gateway

import (
	"google.golang.org/grpc"

	"github.com/oggyb/swipematch/internal/app"
)

// Registrar ties the Gateway service into the gRPC server
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the Gateway service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the Gateway service implementation to the gRPC server
func (r *Registrar) Register(s *grpc.Server) {
	RegisterGatewayServer(s, NewService(r.appCtx))
}
