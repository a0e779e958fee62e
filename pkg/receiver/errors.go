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

package receiver

import (
	"errors"
	"fmt"

	"github.com/carverauto/cyclescan/pkg/scanerr"
)

var (
	ErrUnsupportedLinkType = errors.New("unsupported datalink type")
	ErrRecorderStopped     = errors.New("recorder stopped")
)

func errLinkType(v int) error {
	return fmt.Errorf("%w: %w %d", scanerr.ErrResourceFatal, ErrUnsupportedLinkType, v)
}
