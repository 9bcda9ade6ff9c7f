package proxy

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/prognoza/forecast-platform/api-gateway/config"
	"github.com/prognoza/forecast-platform/api-gateway/loadbalancer"
	"github.com/prognoza/forecast-platform/pkg/logger"
)

// ReverseProxy forwards requests to the forecast backend instances.
type ReverseProxy struct {
	backend  config.BackendConfig
	client   *http.Client
	balancer *loadbalancer.RoundRobin
}

// NewReverseProxy creates a proxy over the configured backend.
func NewReverseProxy(cfg *config.GatewayConfig) *ReverseProxy {
	return &ReverseProxy{
		backend:  cfg.Backend,
		balancer: loadbalancer.NewRoundRobin(cfg.Backend.Instances),
		client: &http.Client{
			Timeout: cfg.Backend.Timeout,
		},
	}
}

// Forward proxies the request to the next backend instance.
func (p *ReverseProxy) Forward(c *fiber.Ctx) error {
	instance := p.balancer.Next()
	if instance == "" {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "No available backend instances",
		})
	}

	logger.Logger.Debug().
		Str("instance", instance).
		Str("path", c.Path()).
		Msg("Balancer selected instance")

	req, err := http.NewRequestWithContext(
		c.UserContext(),
		c.Method(),
		p.targetURL(c, instance),
		bytes.NewReader(c.Body()),
	)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create request",
		})
	}

	p.copyRequestHeaders(c, req)

	resp, err := p.client.Do(req)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   "Failed to reach backend",
			"service": p.backend.Name,
			"details": err.Error(),
		})
	}
	defer resp.Body.Close()

	p.copyResponseHeaders(c, resp)
	c.Status(resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read backend response",
		})
	}

	return c.Send(body)
}

// Balancer exposes the load balancer for the stats endpoint.
func (p *ReverseProxy) Balancer() *loadbalancer.RoundRobin {
	return p.balancer
}

func (p *ReverseProxy) targetURL(c *fiber.Ctx, instance string) string {
	path := string(c.Request().URI().Path())

	queryString := string(c.Request().URI().QueryString())
	if queryString != "" {
		queryString = "?" + queryString
	}

	return instance + path + queryString
}

func (p *ReverseProxy) copyRequestHeaders(c *fiber.Ctx, req *http.Request) {
	c.Request().Header.VisitAll(func(key, value []byte) {
		if strings.EqualFold(string(key), "host") {
			return
		}
		req.Header.Set(string(key), string(value))
	})

	req.Header.Set("X-Forwarded-For", c.IP())
	req.Header.Set("X-Forwarded-Proto", c.Protocol())
	req.Header.Set("X-Forwarded-Host", c.Hostname())
}

func (p *ReverseProxy) copyResponseHeaders(c *fiber.Ctx, resp *http.Response) {
	for key, values := range resp.Header {
		if strings.EqualFold(key, "content-length") {
			continue
		}
		for _, value := range values {
			c.Set(key, value)
		}
	}
}
