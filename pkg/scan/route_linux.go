/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package scan

import (
	"fmt"
	"net"
	"net/netip"

	"github.com/vishvananda/netlink"

	"github.com/carverauto/cyclescan/pkg/scanerr"
)

// usableNeighState is any neighbor state with a trustworthy lladdr.
const usableNeighState = netlink.NUD_REACHABLE | netlink.NUD_STALE | netlink.NUD_DELAY |
	netlink.NUD_PROBE | netlink.NUD_PERMANENT | netlink.NUD_NOARP

// Resolve finds the interface, source addresses and gateway MAC for a scan.
// Failures are ResourceFatal.
func Resolve(opts ResolveOptions) (*Interface, error) {
	family, probe := netlink.FAMILY_V4, RouteDiscoveryV4
	if opts.IPv6 {
		family, probe = netlink.FAMILY_V6, RouteDiscoveryV6
	}

	link, err := lookupLink(opts.Name, probe)
	if err != nil {
		return nil, err
	}

	attrs := link.Attrs()
	if attrs.Flags&net.FlagUp == 0 {
		return nil, scanerr.Resource("interface "+attrs.Name, ErrInterfaceDown)
	}

	iface := &Interface{
		Name:     attrs.Name,
		Index:    attrs.Index,
		MTU:      attrs.MTU,
		MAC:      attrs.HardwareAddr,
		Ethernet: isEthernet(attrs),
	}

	if !iface.Ethernet && !isRawIP(attrs) {
		return nil, scanerr.Resource(fmt.Sprintf("interface %s (%s)", attrs.Name, attrs.EncapType), ErrUnsupportedLink)
	}

	iface.SourceIPs = opts.SourceIPs
	if len(iface.SourceIPs) == 0 {
		addrs, err := netlink.AddrList(link, family)
		if err != nil {
			return nil, scanerr.Resource("list addresses on "+attrs.Name, err)
		}

		src, ok := pickSource(addrs, opts.IPv6)
		if !ok {
			return nil, scanerr.Resource("interface "+attrs.Name, ErrNoSourceAddr)
		}

		iface.SourceIPs = []netip.Addr{src}
	}

	if !iface.Ethernet {
		return iface, nil
	}

	if attrs.EncapType == "loopback" {
		iface.GatewayMAC = make(net.HardwareAddr, 6)
		return iface, nil
	}

	if len(opts.GatewayMAC) > 0 {
		iface.GatewayMAC = opts.GatewayMAC
		return iface, nil
	}

	routes, err := netlink.RouteList(link, family)
	if err != nil {
		return nil, scanerr.Resource("list routes on "+attrs.Name, err)
	}

	gw, ok := defaultGateway(routes)
	if !ok {
		return nil, scanerr.Resource("interface "+attrs.Name, ErrNoGateway)
	}

	iface.Gateway = gw

	neighs, err := netlink.NeighList(attrs.Index, family)
	if err != nil {
		return nil, scanerr.Resource("list neighbors on "+attrs.Name, err)
	}

	mac, ok := pickNeighbor(neighs, gw)
	if !ok {
		return nil, scanerr.Resource(fmt.Sprintf("gateway %s (set gateway_mac)", gw), ErrNoGatewayMAC)
	}

	iface.GatewayMAC = mac

	return iface, nil
}

func lookupLink(name string, probe netip.Addr) (netlink.Link, error) {
	if name != "" {
		link, err := netlink.LinkByName(name)
		if err != nil {
			return nil, scanerr.Resource("interface "+name, err)
		}

		return link, nil
	}

	routes, err := netlink.RouteGet(probe.AsSlice())
	if err != nil {
		return nil, scanerr.Resource("route lookup", err)
	}

	if len(routes) == 0 {
		return nil, scanerr.Resource("route lookup", ErrNoRoute)
	}

	link, err := netlink.LinkByIndex(routes[0].LinkIndex)
	if err != nil {
		return nil, scanerr.Resource("default route interface", err)
	}

	return link, nil
}

func isEthernet(attrs *netlink.LinkAttrs) bool {
	switch attrs.EncapType {
	case "ether", "loopback":
		return len(attrs.HardwareAddr) == 6
	}

	return false
}

// isRawIP reports whether the link carries bare IP packets.
func isRawIP(attrs *netlink.LinkAttrs) bool {
	switch attrs.EncapType {
	case "none", "ppp", "ipip", "sit", "tunnel6":
		return true
	}

	return false
}

// defaultGateway returns the gateway of the first default route.
func defaultGateway(routes []netlink.Route) (netip.Addr, bool) {
	for _, r := range routes {
		if r.Gw == nil {
			continue
		}

		if r.Dst != nil {
			if ones, _ := r.Dst.Mask.Size(); ones != 0 {
				continue
			}
		}

		gw, ok := netip.AddrFromSlice(r.Gw)
		if ok {
			return gw.Unmap(), true
		}
	}

	return netip.Addr{}, false
}

// pickNeighbor returns the lladdr of ip from the neighbor table.
func pickNeighbor(neighs []netlink.Neigh, ip netip.Addr) (net.HardwareAddr, bool) {
	for _, n := range neighs {
		a, ok := netip.AddrFromSlice(n.IP)
		if !ok || a.Unmap() != ip {
			continue
		}

		if n.State&usableNeighState == 0 || len(n.HardwareAddr) != 6 {
			continue
		}

		return n.HardwareAddr, true
	}

	return nil, false
}

// pickSource returns the first global unicast address of the family.
func pickSource(addrs []netlink.Addr, v6 bool) (netip.Addr, bool) {
	for _, a := range addrs {
		if a.IPNet == nil {
			continue
		}

		ip, ok := netip.AddrFromSlice(a.IP)
		if !ok {
			continue
		}

		ip = ip.Unmap()
		if ip.Is4() == v6 || ip.IsLinkLocalUnicast() || ip.IsMulticast() {
			continue
		}

		return ip, true
	}

	return netip.Addr{}, false
}
