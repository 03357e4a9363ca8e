package media

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// ErrNoDuration is returned when a video carries no readable duration.
var ErrNoDuration = errors.New("video duration not found")

// ProbeDuration reads the movie header of an ISO base media file (mp4, mov,
// m4v) and returns its duration.
func ProbeDuration(data []byte) (time.Duration, error) {
	moov, found := findBox(data, "moov")
	if !found {
		return 0, ErrNoDuration
	}
	mvhd, found := findBox(moov, "mvhd")
	if !found || len(mvhd) < 4 {
		return 0, ErrNoDuration
	}

	var timescale uint32
	var units uint64
	switch version := mvhd[0]; version {
	case 0:
		if len(mvhd) < 20 {
			return 0, ErrNoDuration
		}
		timescale = binary.BigEndian.Uint32(mvhd[12:16])
		units = uint64(binary.BigEndian.Uint32(mvhd[16:20]))
	case 1:
		if len(mvhd) < 32 {
			return 0, ErrNoDuration
		}
		timescale = binary.BigEndian.Uint32(mvhd[20:24])
		units = binary.BigEndian.Uint64(mvhd[24:32])
	default:
		return 0, fmt.Errorf("[media ProbeDuration] unsupported mvhd version %d", version)
	}
	if timescale == 0 {
		return 0, ErrNoDuration
	}

	seconds := units / uint64(timescale)
	rest := units % uint64(timescale)
	return time.Duration(seconds)*time.Second + time.Duration(rest)*time.Second/time.Duration(timescale), nil
}

// findBox returns the payload of the first box of the given type at this level.
func findBox(data []byte, boxType string) ([]byte, bool) {
	for len(data) >= 8 {
		size := uint64(binary.BigEndian.Uint32(data[0:4]))
		header := uint64(8)
		switch size {
		case 0:
			size = uint64(len(data))
		case 1:
			if len(data) < 16 {
				return nil, false
			}
			size = binary.BigEndian.Uint64(data[8:16])
			header = 16
		}
		if size < header || size > uint64(len(data)) {
			return nil, false
		}
		if string(data[4:8]) == boxType {
			return data[header:size], true
		}
		data = data[size:]
	}
	return nil, false
}
