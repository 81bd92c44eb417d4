// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bid

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/adxyz/rtbsim/pkg/sample"
)

var (
	sampleOSes      = []string{"Windows", "MacOS", "iOS", "Android"}
	sampleBrowsers  = []string{"Chrome", "Safari", "Firefox", "Edge"}
	sampleCities    = []string{"New York", "Los Angeles", "Chicago", "Houston", "Phoenix"}
	sampleWidths    = []int{300, 728, 970, 320}
	sampleHeights   = []int{250, 90, 250, 50}
	samplePositions = []string{PositionAboveFold, PositionBelowFold}
)

// Generate produces n synthetic opportunities from the given seed. The
// same seed yields the same sequence. Quality signals skew the way live
// exchange traffic does: viewability high, behavior scores low, values
// right-tailed.
func Generate(n int, seed int64) []*Opportunity {
	rng := rand.New(rand.NewSource(seed))
	opps := make([]*Opportunity, 0, n)

	for i := 0; i < n; i++ {
		viewability := sample.Beta(rng, 8, 2)
		behavior := sample.Beta(rng, 3, 5)

		// Conversion probability rides on quality.
		const baseCVR = 0.01
		cvr := baseCVR + (viewability*0.3+behavior*0.7)*0.05

		segments := make([]string, 1+rng.Intn(5))
		for s := range segments {
			segments[s] = fmt.Sprintf("seg_%d", s)
		}

		widthIdx := rng.Intn(len(sampleWidths))

		opps = append(opps, &Opportunity{
			ID:        uuid.NewString(),
			Timestamp: time.Now(),
			User: User{
				ID:            uuid.NewString(),
				Segments:      segments,
				BehaviorScore: behavior,
			},
			Device: Device{
				Type:       DeviceTypes[rng.Intn(len(DeviceTypes))],
				OS:         sampleOSes[rng.Intn(len(sampleOSes))],
				Browser:    sampleBrowsers[rng.Intn(len(sampleBrowsers))],
				IP:         fmt.Sprintf("%d.%d.%d.%d", 1+rng.Intn(255), 1+rng.Intn(255), 1+rng.Intn(255), 1+rng.Intn(255)),
				GeoCity:    sampleCities[rng.Intn(len(sampleCities))],
				GeoCountry: "US",
			},
			Placement: Placement{
				ID:               uuid.NewString(),
				Format:           AdFormats[rng.Intn(len(AdFormats))],
				Width:            sampleWidths[widthIdx],
				Height:           sampleHeights[widthIdx],
				Position:         samplePositions[rng.Intn(len(samplePositions))],
				ViewabilityScore: viewability,
			},
			ConversionProbability: cvr,
			EstimatedValue:        sample.Gamma(rng, 3, 5),
		})
	}

	return opps
}
