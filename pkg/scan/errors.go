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

import "errors"

var (
	// Interface errors
	ErrNoRoute         = errors.New("no route to the probe destination")
	ErrNoSourceAddr    = errors.New("interface has no usable source address")
	ErrNoGateway       = errors.New("no default gateway on interface")
	ErrNoGatewayMAC    = errors.New("gateway MAC address not in neighbor table")
	ErrUnsupportedLink = errors.New("unsupported link encapsulation")
	ErrInterfaceDown   = errors.New("interface is down")
	ErrNotLinux        = errors.New("raw sending is only supported on Linux")

	// Capture errors
	ErrCaptureTimeout = errors.New("capture read timed out")
	ErrCaptureClosed  = errors.New("capture closed")

	// Send errors
	ErrFrameTooLarge = errors.New("frame exceeds interface MTU")
)
