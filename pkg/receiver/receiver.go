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

// Package receiver turns captured frames into validated hits and hands them
// to the recorder of the running strategy.
package receiver

import (
	"encoding/binary"

	"github.com/carverauto/cyclescan/pkg/aeskey"
	"github.com/carverauto/cyclescan/pkg/models"
	"github.com/carverauto/cyclescan/pkg/probe"
	"github.com/google/gopacket/layers"
)

const (
	ethernetHeaderLen = 14
	vlanTagLen        = 4
	sllHeaderLen      = 16
	nullHeaderLen     = 4
	ipv4MinHeaderLen  = 20
	ipv6HeaderLen     = 40

	etherTypeVLAN = 0x8100
)

// LinkHeaderLen returns the fixed link-layer header length for a pcap
// datalink type.
func LinkHeaderLen(lt layers.LinkType) (int, error) {
	switch lt {
	case layers.LinkTypeEthernet:
		return ethernetHeaderLen, nil
	case layers.LinkTypeLinuxSLL:
		return sllHeaderLen, nil
	case layers.LinkTypeRaw, layers.LinkTypeIPv4, layers.LinkTypeIPv6:
		return 0, nil
	case layers.LinkTypeNull, layers.LinkTypeLoop:
		return nullHeaderLen, nil
	default:
		return 0, errLinkType(int(lt))
	}
}

// Pipeline validates frames from one capture handle. It is owned by a single
// receiver goroutine.
type Pipeline struct {
	module   probe.Module
	key      *aeskey.Key
	linkType layers.LinkType
	linkLen  int
	recorder Recorder
	counters *models.Counters
	frame    probe.Frame
}

// NewPipeline sizes the link header once for the handle's datalink type.
func NewPipeline(module probe.Module, key *aeskey.Key, lt layers.LinkType, rec Recorder, counters *models.Counters) (*Pipeline, error) {
	n, err := LinkHeaderLen(lt)
	if err != nil {
		return nil, err
	}

	if counters == nil {
		counters = &models.Counters{}
	}

	return &Pipeline{
		module:   module,
		key:      key,
		linkType: lt,
		linkLen:  n,
		recorder: rec,
		counters: counters,
	}, nil
}

// Handle processes one captured frame. Frames that fail parsing or
// validation are counted as probe drops; the returned error comes only from
// the recorder.
func (p *Pipeline) Handle(data []byte) error {
	p.counters.Received.Add(1)

	if !p.slice(data) {
		p.counters.ProbeDrops.Add(1)
		return nil
	}

	hit, ok := p.module.Validate(&p.frame, p.key)
	if !ok {
		p.counters.ProbeDrops.Add(1)
		return nil
	}

	_, err := p.recorder.Record(&hit)

	return err
}

func (p *Pipeline) slice(data []byte) bool {
	off := p.linkLen

	if p.linkType == layers.LinkTypeEthernet && len(data) >= ethernetHeaderLen &&
		binary.BigEndian.Uint16(data[12:14]) == etherTypeVLAN {
		off += vlanTagLen
	}

	if len(data) <= off {
		return false
	}

	p.frame.Link = data[:off]
	net := data[off:]

	switch net[0] >> 4 {
	case 4:
		if len(net) < ipv4MinHeaderLen {
			return false
		}

		hl := int(net[0]&0x0f) * 4
		total := int(binary.BigEndian.Uint16(net[2:4]))

		if hl < ipv4MinHeaderLen || hl > len(net) {
			return false
		}

		if total >= hl && total < len(net) {
			net = net[:total]
		}

		p.frame.Net = net
		p.frame.Data = net[hl:]
	case 6:
		if len(net) < ipv6HeaderLen {
			return false
		}

		end := ipv6HeaderLen + int(binary.BigEndian.Uint16(net[4:6]))
		if end < len(net) {
			net = net[:end]
		}

		p.frame.Net = net
		p.frame.Data = net[ipv6HeaderLen:]
	default:
		return false
	}

	return true
}
