package replay

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/lintang-b-s/navigatorx-ar/pkg/geo"
	"github.com/lintang-b-s/navigatorx-ar/pkg/overlay"
	"github.com/lintang-b-s/navigatorx-ar/pkg/util"
)

// Fix is one recorded vehicle location.
type Fix struct {
	Coordinate geo.Coordinate
	// Bearing in degrees, nil when the recording has none.
	Bearing *float64
}

func (f Fix) toLocationUpdate() overlay.LocationUpdate {
	return overlay.LocationUpdate{Coordinate: f.Coordinate, Bearing: f.Bearing}
}

// ReadTrace parses a recorded trace, one "lat,lon[,bearing]" record per line. Lines starting with # are
// comments and a leading "lat,lon..." header is skipped.
func ReadTrace(r io.Reader) ([]Fix, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	fixes := make([]Fix, 0)
	for record := 0; ; record++ {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrBadParamInput, "read trace")
		}
		line, _ := reader.FieldPos(0)

		if record == 0 && strings.EqualFold(strings.TrimSpace(fields[0]), "lat") {
			continue
		}

		fix, err := parseFix(fields)
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrBadParamInput, "trace line %d", line)
		}
		fixes = append(fixes, fix)
	}
	return fixes, nil
}

func parseFix(fields []string) (Fix, error) {
	if len(fields) < 2 || len(fields) > 3 {
		return Fix{}, errors.New("want lat,lon[,bearing]")
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
	if err != nil {
		return Fix{}, err
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if err != nil {
		return Fix{}, err
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return Fix{}, errors.New("coordinate out of range")
	}

	fix := Fix{Coordinate: geo.NewCoordinate(lat, lon)}
	if len(fields) == 3 && strings.TrimSpace(fields[2]) != "" {
		bearing, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
		if err != nil {
			return Fix{}, err
		}
		fix.Bearing = &bearing
	}
	return fix, nil
}

// WriteTrace is the inverse of ReadTrace.
func WriteTrace(w io.Writer, fixes []Fix) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"lat", "lon", "bearing"}); err != nil {
		return err
	}
	for _, fix := range fixes {
		record := []string{
			strconv.FormatFloat(fix.Coordinate.Lat, 'f', -1, 64),
			strconv.FormatFloat(fix.Coordinate.Lon, 'f', -1, 64),
			"",
		}
		if fix.Bearing != nil {
			record[2] = strconv.FormatFloat(*fix.Bearing, 'f', -1, 64)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
