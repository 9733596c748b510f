package alarm_controller

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	pb "github.com/firesense-dev/firesense/grpc/gen/go/annunciator"
)

// AnnunciatorRouter exposes one gRPC client per site (site -> annunciator service).
type AnnunciatorRouter interface {
	Get(site string) (pb.AnnunciatorServiceClient, bool)
	Close()
}

// annunciatorRouter keeps one gRPC connection per site.
type annunciatorRouter struct {
	mu    sync.RWMutex
	conns map[string]*grpc.ClientConn
	clis  map[string]pb.AnnunciatorServiceClient
}

var _ AnnunciatorRouter = (*annunciatorRouter)(nil)

// NewAnnunciatorRouter parses a map string like
// "site-a=annunciator-a:50051,site-b=annunciator-b:50051".
func NewAnnunciatorRouter(ctx context.Context, mapStr string) (AnnunciatorRouter, error) {
	ar := &annunciatorRouter{
		conns: make(map[string]*grpc.ClientConn),
		clis:  make(map[string]pb.AnnunciatorServiceClient),
	}

	pairs := strings.Split(mapStr, ",")
	for _, p := range pairs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("invalid SIREN_GRPC_ADDR_MAP entry: %q", p)
		}
		site, addr := strings.TrimSpace(kv[0]), strings.TrimSpace(kv[1])

		dctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		conn, err := grpc.DialContext(
			dctx,
			addr,
			grpc.WithTransportCredentials(insecure.NewCredentials()),
			grpc.WithReturnConnectionError(),
		)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("dial %s (%s): %w", site, addr, err)
		}

		ar.mu.Lock()
		ar.conns[site] = conn
		ar.clis[site] = pb.NewAnnunciatorServiceClient(conn)
		ar.mu.Unlock()
	}
	return ar, nil
}

func (a *annunciatorRouter) Get(site string) (pb.AnnunciatorServiceClient, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	cli, ok := a.clis[site]
	return cli, ok
}

func (a *annunciatorRouter) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, c := range a.conns {
		if c != nil {
			_ = c.Close()
		}
	}
	a.clis = map[string]pb.AnnunciatorServiceClient{}
	a.conns = map[string]*grpc.ClientConn{}
}
