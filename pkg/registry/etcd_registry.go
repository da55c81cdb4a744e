package registry

import (
	"context"
	"fmt"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"

	"video-translate-service/pkg/config"
	"video-translate-service/pkg/logger"
)

// ServiceRegistry registers the service address into etcd under a lease.
type ServiceRegistry struct {
	client      *clientv3.Client
	serviceName string
	serviceID   string
	serviceAddr string
	ttl         int64
	leaseID     clientv3.LeaseID
	cancel      context.CancelFunc
}

// NewServiceRegistry creates a registry client from service configuration.
func NewServiceRegistry(cfg config.ServiceRegistryConfig, serviceAddr string) (*ServiceRegistry, error) {
	client, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: cfg.DialTimeout,
		Username:    cfg.Username,
		Password:    cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}

	ttl := int64(cfg.TTL / time.Second)
	if ttl <= 0 {
		ttl = 30
	}
	serviceID := cfg.ServiceID
	if serviceID == "" {
		serviceID = serviceAddr
	}
	return &ServiceRegistry{
		client:      client,
		serviceName: cfg.ServiceName,
		serviceID:   serviceID,
		serviceAddr: serviceAddr,
		ttl:         ttl,
	}, nil
}

// Key is the etcd key the instance is stored under.
func (r *ServiceRegistry) Key() string {
	return fmt.Sprintf("/services/%s/%s", r.serviceName, r.serviceID)
}

func (r *ServiceRegistry) Name() string { return "etcd-registry" }

// Start grants a lease, puts the instance key and keeps the lease alive until Stop.
func (r *ServiceRegistry) Start(ctx context.Context) error {
	ctx, r.cancel = context.WithCancel(ctx)

	leaseResp, err := r.client.Grant(ctx, r.ttl)
	if err != nil {
		return fmt.Errorf("failed to grant lease: %w", err)
	}
	r.leaseID = leaseResp.ID

	if _, err := r.client.Put(ctx, r.Key(), r.serviceAddr, clientv3.WithLease(r.leaseID)); err != nil {
		return fmt.Errorf("failed to register service: %w", err)
	}

	ch, err := r.client.KeepAlive(ctx, r.leaseID)
	if err != nil {
		return fmt.Errorf("failed to keep alive lease: %w", err)
	}
	go func() {
		for ka := range ch {
			if ka == nil {
				break
			}
		}
		if ctx.Err() == nil {
			logger.Warnf("Etcd keep alive channel closed key=%s", r.Key())
		}
	}()

	logger.Infof("Service registered key=%s addr=%s", r.Key(), r.serviceAddr)
	return nil
}

// Stop revokes the lease and closes the client.
func (r *ServiceRegistry) Stop() error {
	if r.cancel != nil {
		r.cancel()
	}
	if r.leaseID != 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if _, err := r.client.Revoke(ctx, r.leaseID); err != nil {
			logger.Warnf("Failed to revoke lease error=%v", err)
		}
	}
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("failed to close etcd client: %w", err)
	}
	logger.Infof("Service deregistered key=%s", r.Key())
	return nil
}
