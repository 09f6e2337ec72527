package netx

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/hostlayer/hostshim/errs"
	"github.com/hostlayer/hostshim/permissions"
)

// RecordType selects the DNS record kind for Resolve.
type RecordType string

const (
	RecordA     RecordType = "A"
	RecordAAAA  RecordType = "AAAA"
	RecordCNAME RecordType = "CNAME"
	RecordTXT   RecordType = "TXT"
	RecordMX    RecordType = "MX"
	RecordNS    RecordType = "NS"
	RecordPTR   RecordType = "PTR"
	RecordSRV   RecordType = "SRV"
)

// Resolve performs a DNS query for name and returns the records as
// strings. Requires net capability on the queried name.
func (n *Net) Resolve(ctx context.Context, name string, record RecordType) (records []string, err error) {
	done := n.begin("resolve_dns")
	defer func() { done(err) }()

	if err = n.perms.Check(permissions.NetHost(strings.ToLower(name)), "resolve_dns"); err != nil {
		return nil, err
	}

	r := net.DefaultResolver
	switch record {
	case RecordA, RecordAAAA:
		network := "ip4"
		if record == RecordAAAA {
			network = "ip6"
		}
		ips, lookupErr := r.LookupIP(ctx, network, name)
		if lookupErr != nil {
			return nil, errs.FromNet("resolve_dns", name, lookupErr)
		}
		for _, ip := range ips {
			records = append(records, ip.String())
		}
	case RecordCNAME:
		cname, lookupErr := r.LookupCNAME(ctx, name)
		if lookupErr != nil {
			return nil, errs.FromNet("resolve_dns", name, lookupErr)
		}
		records = []string{cname}
	case RecordTXT:
		records, err = r.LookupTXT(ctx, name)
		if err != nil {
			return nil, errs.FromNet("resolve_dns", name, err)
		}
	case RecordMX:
		mxs, lookupErr := r.LookupMX(ctx, name)
		if lookupErr != nil {
			return nil, errs.FromNet("resolve_dns", name, lookupErr)
		}
		for _, mx := range mxs {
			records = append(records, fmt.Sprintf("%d %s", mx.Pref, mx.Host))
		}
	case RecordNS:
		nss, lookupErr := r.LookupNS(ctx, name)
		if lookupErr != nil {
			return nil, errs.FromNet("resolve_dns", name, lookupErr)
		}
		for _, ns := range nss {
			records = append(records, ns.Host)
		}
	case RecordPTR:
		records, err = r.LookupAddr(ctx, name)
		if err != nil {
			return nil, errs.FromNet("resolve_dns", name, err)
		}
	case RecordSRV:
		_, srvs, lookupErr := r.LookupSRV(ctx, "", "", name)
		if lookupErr != nil {
			return nil, errs.FromNet("resolve_dns", name, lookupErr)
		}
		for _, srv := range srvs {
			records = append(records, fmt.Sprintf("%d %d %d %s", srv.Priority, srv.Weight, srv.Port, srv.Target))
		}
	default:
		return nil, errs.New(errs.NotSupported, "resolve_dns").
			WithDetail("record type " + string(record))
	}
	return records, nil
}
