package dialer

import (
	"context"
	"net"
	"testing"
)

type otherKey struct{}

func TestWithDNSServer(t *testing.T) {
	parent := context.WithValue(context.Background(), otherKey{}, "parent")
	if ctx := withDNSServer(parent, ""); ctx != parent {
		t.Fatal("an empty server wrapped the context")
	}
	ctx := withDNSServer(parent, "10.0.0.53:53")
	if got := ctx.Value(serverCtxKey{}); got != "10.0.0.53:53" {
		t.Fatalf("server=%v", got)
	}
	if got := ctx.Value(otherKey{}); got != "parent" {
		t.Fatalf("other key=%v", got)
	}
	if got := parent.Value(serverCtxKey{}); got != nil {
		t.Fatalf("parent sees server %v", got)
	}
}

func TestLookupLiteral(t *testing.T) {
	d := &CoreDialer{}
	for _, cfg := range []*ResolveConfig{nil, {Network: "ip4"}} {
		ips, err := d.lookup(context.Background(), cfg, "127.0.0.1")
		if err != nil {
			t.Fatal(err)
		}
		if len(ips) != 1 || !ips[0].Equal(net.IPv4(127, 0, 0, 1)) {
			t.Fatalf("ips=%v", ips)
		}
	}
}
