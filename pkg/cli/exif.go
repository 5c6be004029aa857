package cli

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	tagOrientation = 0x0112
	typeShort      = 3
)

var errNoOrientation = errors.New("no exif orientation")

// jpegOrientation returns the EXIF orientation (1..8) stored in IFD0 of a
// JPEG's APP1 segment.
func jpegOrientation(data []byte) (int, error) {
	tiff, err := exifTIFF(data)
	if err != nil {
		return 0, err
	}
	if len(tiff) < 8 {
		return 0, fmt.Errorf("tiff header truncated")
	}
	var order binary.ByteOrder
	switch string(tiff[:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return 0, fmt.Errorf("unknown tiff byte order %q", tiff[:2])
	}
	if order.Uint16(tiff[2:4]) != 0x2A {
		return 0, fmt.Errorf("invalid tiff magic")
	}
	ifd := int(order.Uint32(tiff[4:8]))
	if ifd < 8 || ifd+2 > len(tiff) {
		return 0, fmt.Errorf("ifd0 offset %d out of range", ifd)
	}
	n := int(order.Uint16(tiff[ifd : ifd+2]))
	for e := 0; e < n; e++ {
		ent := ifd + 2 + 12*e
		if ent+12 > len(tiff) {
			break
		}
		if order.Uint16(tiff[ent:ent+2]) != tagOrientation || order.Uint16(tiff[ent+2:ent+4]) != typeShort {
			continue
		}
		o := int(order.Uint16(tiff[ent+8 : ent+10]))
		if o < 1 || o > 8 {
			return 0, fmt.Errorf("orientation %d out of range", o)
		}
		return o, nil
	}
	return 0, errNoOrientation
}

// exifTIFF walks JPEG marker segments up to start-of-scan and returns the TIFF
// block of the first Exif APP1 segment.
func exifTIFF(data []byte) ([]byte, error) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return nil, fmt.Errorf("not a jpeg")
	}
	i := 2
	for i+4 <= len(data) {
		if data[i] != 0xFF {
			return nil, fmt.Errorf("bad marker at %d", i)
		}
		marker := data[i+1]
		if marker == 0xDA || marker == 0xD9 {
			break
		}
		segLen := int(data[i+2])<<8 | int(data[i+3])
		if segLen < 2 || i+2+segLen > len(data) {
			return nil, fmt.Errorf("segment %#x truncated", marker)
		}
		seg := data[i+4 : i+2+segLen]
		if marker == 0xE1 && len(seg) >= 6 && string(seg[:6]) == "Exif\x00\x00" {
			return seg[6:], nil
		}
		i += 2 + segLen
	}
	return nil, errNoOrientation
}
