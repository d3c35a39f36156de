// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package focus

// DefaultParameters are the default parameters for focus consensus
var DefaultParameters = Parameters{
	K:               20,
	AlphaPreference: 15,
	AlphaConfidence: 15,
	Beta:            20,
}