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

package cyclic

import "errors"

var (
	ErrEmptyRange      = errors.New("scan range is empty")
	ErrRangeTooLarge   = errors.New("scan range exceeds the prime table")
	ErrNoPrimitiveRoot = errors.New("no primitive root in generator bound")
	ErrTooManyShards   = errors.New("shard count exceeds group order")
	ErrShardIndex      = errors.New("shard index out of range")
	ErrNotInGroup      = errors.New("value is not a group element")
	ErrBadTarget       = errors.New("invalid target specification")
	ErrMixedFamilies   = errors.New("target list mixes IPv4 and IPv6")
)
