package bid

import (
	"github.com/prebid/openrtb/v20/adcom1"
	"github.com/prebid/openrtb/v20/openrtb2"
)

func ptrInt64(v int64) *int64 { return &v }

func deviceTypeToRTB(t DeviceType) adcom1.DeviceType {
	switch t {
	case DeviceDesktop:
		return adcom1.DevicePC
	case DeviceMobile:
		return adcom1.DevicePhone
	case DeviceTablet:
		return adcom1.DeviceTablet
	case DeviceCTV:
		return adcom1.DeviceTV
	default:
		return adcom1.DevicePC
	}
}

// ToOpenRTB converts an Opportunity to an OpenRTB 2.x bid request for
// interop with exchange tooling. This is a one-way export; the
// simulator never speaks the wire protocol.
func (o *Opportunity) ToOpenRTB() *openrtb2.BidRequest {
	imp := openrtb2.Imp{
		ID:       o.Placement.ID,
		BidFloor: o.FloorPrice,
	}

	switch o.Placement.Format {
	case FormatVideo:
		imp.Video = &openrtb2.Video{
			W: ptrInt64(int64(o.Placement.Width)),
			H: ptrInt64(int64(o.Placement.Height)),
		}
	case FormatAudio:
		imp.Audio = &openrtb2.Audio{}
	case FormatNative:
		imp.Native = &openrtb2.Native{}
	default:
		imp.Banner = &openrtb2.Banner{
			W: ptrInt64(int64(o.Placement.Width)),
			H: ptrInt64(int64(o.Placement.Height)),
		}
	}

	return &openrtb2.BidRequest{
		ID:  o.ID,
		Imp: []openrtb2.Imp{imp},
		Device: &openrtb2.Device{
			DeviceType: deviceTypeToRTB(o.Device.Type),
			OS:         o.Device.OS,
			IP:         o.Device.IP,
			Geo: &openrtb2.Geo{
				City:    o.Device.GeoCity,
				Country: o.Device.GeoCountry,
			},
		},
		User: &openrtb2.User{
			ID: o.User.ID,
		},
	}
}
