// Package polyline encodes and decodes route geometry in Google's encoded
// polyline format at 1e5 precision.
// https://developers.google.com/maps/documentation/utilities/polylinealgorithm
package polyline

import (
	"fmt"
	"math"

	"github.com/smartcity/routeplanner/internal/domain"
	"github.com/smartcity/routeplanner/pkg/utils"
)

const (
	precision = 1e5

	// every encoded character is offset by 63 to land in '?'..'~'
	charOffset = 63
	minChar    = '?'
	maxChar    = '~'

	continuationBit = 0x20
	chunkMask       = 0x1f

	// 12 chunks carry 60 bits, far beyond any valid coordinate delta
	maxChunks = 12
)

// Decode failure reasons
const (
	ReasonTruncatedValue   = "input ends inside a value"
	ReasonMissingLongitude = "input ends after a latitude with no longitude"
	ReasonInvalidChar      = "character outside the polyline alphabet"
	ReasonOverlongValue    = "value exceeds 64 bits"
)

// DecodeError reports malformed polyline input
type DecodeError struct {
	Offset int
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("polyline: %s at offset %d", e.Reason, e.Offset)
}

// Decode converts an encoded path into points in encounter order.
// An empty string decodes to no points. Input that stops in the middle of a
// coordinate is rejected with a *DecodeError rather than returning a partial path.
func Decode(encoded string) ([]domain.GeoPoint, error) {
	if encoded == "" {
		return nil, nil
	}

	var points []domain.GeoPoint
	index, lat, lng := 0, 0, 0

	for index < len(encoded) {
		dlat, next, err := decodeValue(encoded, index)
		if err != nil {
			return nil, err
		}
		if next >= len(encoded) {
			return nil, &DecodeError{Offset: next, Reason: ReasonMissingLongitude}
		}

		dlng, next, err := decodeValue(encoded, next)
		if err != nil {
			return nil, err
		}
		index = next

		lat += dlat
		lng += dlng

		points = append(points, domain.GeoPoint{
			Latitude:  float64(lat) / precision,
			Longitude: float64(lng) / precision,
		})
	}

	return points, nil
}

// decodeValue reads one zig-zag varint starting at index.
// Returns the signed delta and the index just past it.
func decodeValue(encoded string, index int) (int, int, error) {
	shift, result := 0, 0

	for chunks := 0; ; chunks++ {
		if index >= len(encoded) {
			return 0, index, &DecodeError{Offset: index, Reason: ReasonTruncatedValue}
		}
		c := encoded[index]
		if c < minChar || c > maxChar {
			return 0, index, &DecodeError{Offset: index, Reason: ReasonInvalidChar}
		}
		if chunks == maxChunks {
			return 0, index, &DecodeError{Offset: index, Reason: ReasonOverlongValue}
		}

		b := int(c) - charOffset
		index++
		result |= (b & chunkMask) << shift
		shift += 5
		if b < continuationBit {
			break
		}
	}

	if result&1 != 0 {
		return ^(result >> 1), index, nil
	}
	return result >> 1, index, nil
}

// Encode is the inverse of Decode. Coordinates are rounded to 5 decimal places.
func Encode(points []domain.GeoPoint) string {
	if len(points) == 0 {
		return ""
	}

	encoded := make([]byte, 0, len(points)*8)
	prevLat, prevLng := 0, 0

	for _, p := range points {
		lat := int(math.Round(p.Latitude * precision))
		lng := int(math.Round(p.Longitude * precision))

		encoded = encodeValue(encoded, lat-prevLat)
		encoded = encodeValue(encoded, lng-prevLng)

		prevLat, prevLng = lat, lng
	}

	return string(encoded)
}

func encodeValue(buf []byte, value int) []byte {
	if value < 0 {
		value = ^(value << 1)
	} else {
		value <<= 1
	}

	for value >= continuationBit {
		buf = append(buf, byte((value&chunkMask)|continuationBit)+charOffset)
		value >>= 5
	}
	return append(buf, byte(value)+charOffset)
}

// Length returns the along-path distance in kilometers
func Length(points []domain.GeoPoint) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += utils.Haversine(
			points[i-1].Latitude, points[i-1].Longitude,
			points[i].Latitude, points[i].Longitude,
		)
	}
	return total
}
