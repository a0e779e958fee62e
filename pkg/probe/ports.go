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

package probe

// SourcePorts is the range of local ports probes are sent from.
type SourcePorts struct {
	Base  uint16
	Count uint16
}

func (s SourcePorts) size() uint32 {
	if s.Count == 0 {
		return 1
	}

	return uint32(s.Count)
}

// Pick maps a validation word onto the range.
func (s SourcePorts) Pick(v uint32) uint16 {
	return s.Base + uint16(v%s.size())
}

// Contains reports whether p is in the range.
func (s SourcePorts) Contains(p uint16) bool {
	return p >= s.Base && uint32(p-s.Base) < s.size()
}
