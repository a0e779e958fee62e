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
	"bufio"
	"fmt"
	"os"

	"github.com/carverauto/cyclescan/pkg/models"
	"github.com/carverauto/cyclescan/pkg/scanerr"
)

// WriteSummary writes one "key: value" line per summary field.
func WriteSummary(path string, s *models.Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return scanerr.Resource("open summary file", err)
	}

	w := bufio.NewWriter(f)

	for _, kv := range s.Fields() {
		if _, err := fmt.Fprintf(w, "%s: %s\n", kv.Key, kv.Value); err != nil {
			_ = f.Close()
			return err
		}
	}

	if err := w.Flush(); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}
