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

package prefixtree

import (
	"errors"
	"fmt"

	"github.com/carverauto/cyclescan/pkg/scanerr"
)

var (
	ErrNoRoots       = errors.New("prefix tree needs at least one root prefix")
	ErrBadPrefix     = errors.New("invalid IPv6 prefix")
	ErrBadDim        = errors.New("default dim must be between 1 and 16")
	ErrPrefixLens    = errors.New("prefix lengths out of order")
	ErrLearningRate  = errors.New("learning rate must be in (0, 1]")
	ErrExtraNodeNum  = errors.New("extra node count must be positive")
	ErrChildMaxSize  = errors.New("child max size must be positive")
	ErrTooManyStarts = errors.New("start prefix length expands too many roots")
	ErrInitialQ      = errors.New("initial q-value must be in (0, 1]")
)

func configErr(err error, detail string) error {
	if detail == "" {
		return fmt.Errorf("%w: %w", scanerr.ErrConfigFatal, err)
	}

	return fmt.Errorf("%w: %w: %s", scanerr.ErrConfigFatal, err, detail)
}
