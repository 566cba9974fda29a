package health

import (
	"log"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported for the simulator.
const ServiceName = "netsim.Simulation"

// Server is a gRPC server exposing the standard health service.
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
}

// NewServer registers the health service. Both the overall status and
// ServiceName start as NOT_SERVING.
func NewServer() *Server {
	gs := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)

	s := &Server{grpcServer: gs, health: hs}
	s.SetServing(false)
	return s
}

// SetServing flips the reported status.
func (s *Server) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Serve blocks serving gRPC on lis.
func (s *Server) Serve(lis net.Listener) error {
	log.Printf("gRPC health server starting on %s", lis.Addr())
	return s.grpcServer.Serve(lis)
}

// Stop marks the service as not serving and drains open RPCs.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
