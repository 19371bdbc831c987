// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

package hashext

import "encoding/hex"

func hexSum(th TypedHash) string {
	return hex.EncodeToString(th.Sum(nil))
}
