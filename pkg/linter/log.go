// Copyright 2025 Chainguard, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package linter

import (
	"github.com/chainguard-dev/clog"

	"chainguard.dev/shlint/pkg/linter/types"
)

// logStructuredDetails displays itemized details for structured errors
func logStructuredDetails(log *clog.Logger, details any) {
	if details == nil {
		return
	}

	switch d := details.(type) {
	case *types.FindingsDetails:
		for _, f := range d.Findings {
			if f.Detail == "" {
				log.Warnf("    - %s (%s)", f.Code, f.Severity)
				continue
			}
			log.Warnf("    - %s: %s (%s)", f.Code, f.Detail, f.Severity)
		}
	case *types.Finding:
		log.Warnf("    - %s", d)
	}
}
