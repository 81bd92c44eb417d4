// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package bid defines the bid opportunity model: one ad impression
// eligible for bidding, with the user, device, and placement context a
// bidder prices against.
package bid

import (
	"time"

	"github.com/google/uuid"
)

// DeviceType identifies the device class serving the impression.
type DeviceType string

const (
	DeviceDesktop DeviceType = "desktop"
	DeviceMobile  DeviceType = "mobile"
	DeviceTablet  DeviceType = "tablet"
	DeviceCTV     DeviceType = "ctv"
)

// DeviceTypes lists all device classes.
var DeviceTypes = []DeviceType{DeviceDesktop, DeviceMobile, DeviceTablet, DeviceCTV}

// AdFormat identifies the creative format of a placement.
type AdFormat string

const (
	FormatDisplay AdFormat = "display"
	FormatVideo   AdFormat = "video"
	FormatNative  AdFormat = "native"
	FormatAudio   AdFormat = "audio"
)

// AdFormats lists all creative formats.
var AdFormats = []AdFormat{FormatDisplay, FormatVideo, FormatNative, FormatAudio}

// Placement fold positions.
const (
	PositionAboveFold = "above_fold"
	PositionBelowFold = "below_fold"
)

// User carries the user signals attached to an opportunity.
type User struct {
	ID            string   `json:"user_id"`
	Segments      []string `json:"segments,omitempty"`
	BehaviorScore float64  `json:"behavior_score"` // 0-1 likelihood to convert
}

// Device carries device and geo context.
type Device struct {
	Type       DeviceType `json:"type"`
	OS         string     `json:"os"`
	Browser    string     `json:"browser"`
	IP         string     `json:"ip"`
	GeoCity    string     `json:"geo_city"`
	GeoCountry string     `json:"geo_country"`
}

// Placement describes the ad slot being auctioned.
type Placement struct {
	ID               string   `json:"placement_id"`
	Format           AdFormat `json:"format"`
	Width            int      `json:"width"`
	Height           int      `json:"height"`
	Position         string   `json:"position"` // above_fold or below_fold
	ViewabilityScore float64  `json:"viewability_score"` // 0-1 predicted viewability
}

// Opportunity is one bid opportunity. It is created once per simulated
// request and is immutable after creation, except FloorPrice: a zero
// floor means "unset" and the auction populates it exactly once at
// resolution time.
type Opportunity struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	User      User      `json:"user"`
	Device    Device    `json:"device"`
	Placement Placement `json:"placement"`

	FloorPrice float64 `json:"floor_price"`

	// Predicted by an upstream model in a real system.
	ConversionProbability float64 `json:"conversion_probability"`
	EstimatedValue        float64 `json:"estimated_value"` // expected revenue on conversion
}

// New returns an Opportunity with generated identifiers, the current
// timestamp, and neutral defaults for every signal.
func New() *Opportunity {
	return &Opportunity{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		User: User{
			ID:            uuid.NewString(),
			BehaviorScore: 0.5,
		},
		Device: Device{
			Type:       DeviceDesktop,
			OS:         "unknown",
			Browser:    "unknown",
			IP:         "0.0.0.0",
			GeoCity:    "unknown",
			GeoCountry: "US",
		},
		Placement: Placement{
			ID:               uuid.NewString(),
			Format:           FormatDisplay,
			Width:            300,
			Height:           250,
			Position:         PositionAboveFold,
			ViewabilityScore: 0.7,
		},
		FloorPrice:            0.5,
		ConversionProbability: 0.02,
		EstimatedValue:        10.0,
	}
}

// AboveFold reports whether the placement is above the fold.
func (o *Opportunity) AboveFold() bool {
	return o.Placement.Position == PositionAboveFold
}
