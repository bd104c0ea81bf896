package probe

import (
	"context"
	"net"
	"strings"

	"github.com/hamed0406/llamaprobe/internal/domain"
)

type DNSChecker struct {
	Resolver *net.Resolver
}

func NewDNSChecker() *DNSChecker {
	return &DNSChecker{}
}

func (d *DNSChecker) Check(ctx context.Context, target string) CheckResult {
	dns := CheckDNS(ctx, d.Resolver, domain.ProbeTarget{URL: target}.Host())

	ok := dns.Class == DNSResolves || dns.Class == DNSLiteralIP
	msg := string(dns.Class)
	if len(dns.IPs) > 0 {
		addrs := make([]string, 0, len(dns.IPs))
		for _, ip := range dns.IPs {
			addrs = append(addrs, ip.String())
		}
		msg += " " + strings.Join(addrs, ",")
	}
	if dns.ResolverError != "" {
		msg += " (" + dns.ResolverError + ")"
	}
	return CheckResult{Name: "DNS", Success: ok, Message: msg}
}
