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

package lifecycle

import (
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/cyclescan/pkg/logger"
)

func TestCreateComponentLoggerTagsComponent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.log")

	l, err := CreateComponentLogger("receiver", &logger.Config{Level: "debug", Output: "stderr", File: path})
	require.NoError(t, err)

	l.Info().Int("shard", 2).Msg("started")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"receiver"`)
	assert.Contains(t, string(data), `"shard":2`)
	assert.Contains(t, string(data), `"pid":`)
}

func TestCreateComponentLoggerRejectsBadLevel(t *testing.T) {
	_, err := CreateComponentLogger("x", &logger.Config{Level: "chatty"})
	assert.Error(t, err)
}

func TestSignalContextCancelsOnSIGTERM(t *testing.T) {
	ctx, stop := SignalContext(context.Background())
	defer stop()

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGTERM))

	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("context not canceled by SIGTERM")
	}
}
