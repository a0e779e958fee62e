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

package spacetree

import (
	"errors"
	"fmt"

	"github.com/carverauto/cyclescan/pkg/scanerr"
)

var (
	ErrNoSeeds       = errors.New("space tree needs at least one seed")
	ErrBadDim        = errors.New("dim must divide 128 and be at most 16")
	ErrBadLeafSize   = errors.New("max leaf size must be positive")
	ErrLearningRate  = errors.New("learning rate must be in (0, 1]")
	ErrRegionCount   = errors.New("region extraction count out of range")
	ErrBadSeed       = errors.New("invalid seed address")
	ErrFeedbackWidth = errors.New("feedback shorter than region queue")
)

func configErr(err error, detail string) error {
	if detail == "" {
		return fmt.Errorf("%w: %w", scanerr.ErrConfigFatal, err)
	}

	return fmt.Errorf("%w: %w: %s", scanerr.ErrConfigFatal, err, detail)
}
