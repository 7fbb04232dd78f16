package registry

import (
	"fmt"

	capi "github.com/hashicorp/consul/api"
	"github.com/rs/zerolog"
)

// Registration describes how a service announces itself to Consul so the
// other services (gateway, posting service) can discover it.
type Registration struct {
	ConsulAddr  string
	ServiceName string
	ServiceID   string
	Address     string
	Port        int
}

// Register announces the service to the local Consul agent and returns a
// deregister function for the composition root to call on shutdown.
func Register(logger *zerolog.Logger, reg Registration) (func(), error) {
	cfg := capi.DefaultConfig()
	if reg.ConsulAddr != "" {
		cfg.Address = reg.ConsulAddr
	}

	client, err := capi.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create consul client: %w", err)
	}

	serviceID := reg.ServiceID
	if serviceID == "" {
		serviceID = reg.ServiceName
	}

	err = client.Agent().ServiceRegister(&capi.AgentServiceRegistration{
		ID:      serviceID,
		Name:    reg.ServiceName,
		Address: reg.Address,
		Port:    reg.Port,
	})
	if err != nil {
		return nil, fmt.Errorf("register service: %w", err)
	}

	logger.Info().Str("service", reg.ServiceName).Str("id", serviceID).Msg("registered with consul")

	return func() {
		if err := client.Agent().ServiceDeregister(serviceID); err != nil {
			logger.Error().Err(err).Msg("failed to deregister service")
		}
	}, nil
}
