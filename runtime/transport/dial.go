package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"goa.design/clue/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"

	"github.com/grokrpc/grok-go/runtime/grokerr"
	"github.com/grokrpc/grok-go/runtime/model"
)

// DefaultEndpoint is the public Grok API endpoint.
const DefaultEndpoint = "https://api.x.ai"

// Options configures Dial.
type Options struct {
	// Endpoint is the service URL. An https scheme (or no scheme) dials with
	// TLS on port 443 by default; http dials in plaintext.
	Endpoint string
	// APIKey is sent as a bearer token on every call.
	APIKey model.APIKey
	// Timeout bounds each unary call when positive.
	Timeout time.Duration
	// UserAgent is prepended to the gRPC user agent.
	UserAgent string
	// Debug logs every call with clue's gRPC client interceptors.
	Debug bool
	// KeepaliveTime is the ping interval on idle connections; zero disables
	// client pings.
	KeepaliveTime time.Duration
	// DialOptions are appended after the options derived above.
	DialOptions []grpc.DialOption
}

type bearer struct {
	key      model.APIKey
	insecure bool
}

// Dial creates a connection to the endpoint in opts. The connection is lazy:
// no network I/O happens until the first call.
func Dial(ctx context.Context, opts Options) (*GRPC, error) {
	if opts.APIKey.IsZero() {
		return nil, grokerr.Auth("api key is required")
	}
	target, plaintext, err := parseEndpoint(opts.Endpoint)
	if err != nil {
		return nil, err
	}
	dialOpts := []grpc.DialOption{
		grpc.WithPerRPCCredentials(Bearer(opts.APIKey, plaintext)),
	}
	if plaintext {
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	} else {
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})))
	}
	if opts.UserAgent != "" {
		dialOpts = append(dialOpts, grpc.WithUserAgent(opts.UserAgent))
	}
	if opts.KeepaliveTime > 0 {
		dialOpts = append(dialOpts, grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                opts.KeepaliveTime,
			Timeout:             opts.KeepaliveTime / 2,
			PermitWithoutStream: false,
		}))
	}
	if opts.Debug {
		dialOpts = append(dialOpts,
			grpc.WithChainUnaryInterceptor(log.UnaryClientInterceptor()),
			grpc.WithChainStreamInterceptor(log.StreamClientInterceptor()),
		)
	}
	dialOpts = append(dialOpts, opts.DialOptions...)

	conn, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, grokerr.Transport(fmt.Errorf("dial %s: %w", target, err))
	}
	log.Debug(ctx, log.KV{K: "msg", V: "grpc client created"}, log.KV{K: "target", V: target}, log.KV{K: "tls", V: !plaintext})
	return &GRPC{conn: conn, owned: true, timeout: opts.Timeout}, nil
}

// parseEndpoint turns an endpoint URL into a dial target.
func parseEndpoint(endpoint string) (target string, plaintext bool, err error) {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, grokerr.InvalidRequestf("invalid endpoint %q: %v", endpoint, err)
	}
	port := u.Port()
	switch u.Scheme {
	case "https", "grpcs":
		if port == "" {
			port = "443"
		}
	case "http", "grpc":
		plaintext = true
		if port == "" {
			port = "80"
		}
	default:
		return "", false, grokerr.InvalidRequestf("unsupported endpoint scheme %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return "", false, grokerr.InvalidRequestf("endpoint %q has no host", endpoint)
	}
	return net.JoinHostPort(u.Hostname(), port), plaintext, nil
}

// Bearer returns credentials sending key as a bearer token. Unless
// allowInsecure is set gRPC refuses to send them over plaintext connections.
func Bearer(key model.APIKey, allowInsecure bool) credentials.PerRPCCredentials {
	return bearer{key: key, insecure: allowInsecure}
}

func (b bearer) GetRequestMetadata(context.Context, ...string) (map[string]string, error) {
	return map[string]string{"authorization": "Bearer " + b.key.Reveal()}, nil
}

func (b bearer) RequireTransportSecurity() bool { return !b.insecure }
