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

package scanerr

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	cfgErr := Config("shards must be positive, got %d", 0)
	assert.ErrorIs(t, cfgErr, ErrConfigFatal)
	assert.Contains(t, cfgErr.Error(), "shards must be positive, got 0")
	assert.True(t, IsFatal(cfgErr))

	resErr := Resource("open capture on eth9", os.ErrPermission)
	assert.ErrorIs(t, resErr, ErrResourceFatal)
	assert.ErrorIs(t, resErr, os.ErrPermission)
	assert.True(t, IsFatal(resErr))

	assert.False(t, IsFatal(ErrRoundTimeout))
	assert.False(t, IsFatal(errors.New("other")))
}
