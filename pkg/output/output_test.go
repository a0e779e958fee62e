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

package output

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/carverauto/cyclescan/pkg/models"
	"github.com/carverauto/cyclescan/pkg/scanerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestCSVWriterQuotesFields(t *testing.T) {
	var buf bytes.Buffer

	s := NewCSVWriter(&buf)
	require.NoError(t, s.WriteRecord([]string{"2001:db8::1", "80"}))
	require.NoError(t, s.WriteRecord([]string{"a,b", "x"}))
	require.NoError(t, s.Close())

	assert.Equal(t, "2001:db8::1,80\n\"a,b\",x\n", buf.String())
	assert.ErrorIs(t, s.WriteRecord([]string{"late"}), ErrSinkClose)
	assert.NoError(t, s.Close())
}

func TestCSVSinkFileWithHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	s, err := NewCSVSink(path, []string{"saddr", "sport"})
	require.NoError(t, err)
	require.NoError(t, s.WriteRecord([]string{"10.0.0.1", "443"}))
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "saddr,sport\n10.0.0.1,443\n", string(data))
}

func TestCSVSinkOpenFailureIsResourceFatal(t *testing.T) {
	_, err := NewCSVSink(filepath.Join(t.TempDir(), "missing", "out.csv"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, scanerr.ErrResourceFatal)
}

func TestTeeFansOut(t *testing.T) {
	ctrl := gomock.NewController(t)

	a := NewMockSink(ctrl)
	b := NewMockSink(ctrl)
	rec := []string{"10.0.0.9"}
	boom := errors.New("boom")

	a.EXPECT().WriteRecord(rec).Return(boom)
	b.EXPECT().WriteRecord(rec).Return(nil)
	a.EXPECT().Close().Return(nil)
	b.EXPECT().Close().Return(boom)

	tee := Tee{a, b}
	assert.ErrorIs(t, tee.WriteRecord(rec), boom)
	assert.ErrorIs(t, tee.Close(), boom)
}

func TestWriteSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.txt")
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	s := &models.Summary{
		ScanID:    "run-1",
		Strategy:  models.StrategyAddr,
		StartTime: start,
		EndTime:   start.Add(90 * time.Second),
		Stats:     models.ScanStats{Sent: 100, Hits: 7, ProbeDrops: 2},
		Rounds:    1,
	}

	require.NoError(t, WriteSummary(path, s))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, "scan_id: run-1\n")
	assert.Contains(t, text, "strategy: addr\n")
	assert.Contains(t, text, "start_time: 2026-01-02T03:04:05Z\n")
	assert.Contains(t, text, "duration: 1m30s\n")
	assert.Contains(t, text, "sent: 100\n")
	assert.Contains(t, text, "probe_drops: 2\n")
	assert.Contains(t, text, "round_timeouts: 0\n")
}

func TestNATSTLSConfigRequiresFiles(t *testing.T) {
	_, err := TLSConfig(&TLS{CAFile: filepath.Join(t.TempDir(), "nope.pem")})
	assert.Error(t, err)
}
