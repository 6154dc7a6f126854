package synoptic

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"time"
)

// Synoptic API response types. Observations arrive column-oriented: one
// "date_time" string array plus one numeric array per sensor, keyed like
// "ozone_concentration_set_1". Nulls mark missing readings.

type response struct {
	Summary  summary   `json:"SUMMARY"`
	Stations []station `json:"STATION"`
}

type summary struct {
	ResponseCode    int    `json:"RESPONSE_CODE"`
	ResponseMessage string `json:"RESPONSE_MESSAGE"`
}

type station struct {
	STID         string                     `json:"STID"`
	Name         string                     `json:"NAME"`
	Observations map[string]json.RawMessage `json:"OBSERVATIONS"`
}

// setSuffixRe strips the sensor-set suffix from a column key:
// "air_temp_set_1" -> "air_temp", "ozone_concentration_set_1d" -> "ozone_concentration".
var setSuffixRe = regexp.MustCompile(`_set_\d+d?$`)

// flatten converts the column-oriented station observations into rows,
// ordered by station, then variable, then time.
func flatten(resp *response) ([]Observation, error) {
	var rows []Observation

	for _, st := range resp.Stations {
		times, err := parseTimes(st)
		if err != nil {
			return nil, err
		}

		// Map iteration order is random; sort keys for deterministic output.
		keys := make([]string, 0, len(st.Observations))
		for key := range st.Observations {
			if key != "date_time" {
				keys = append(keys, key)
			}
		}
		sort.Strings(keys)

		for _, key := range keys {
			var values []*float64
			if err := json.Unmarshal(st.Observations[key], &values); err != nil {
				return nil, fmt.Errorf("station %s: decode column %s: %w", st.STID, key, err)
			}
			if len(values) != len(times) {
				return nil, fmt.Errorf("station %s: column %s has %d values for %d timestamps",
					st.STID, key, len(values), len(times))
			}

			variable := setSuffixRe.ReplaceAllString(key, "")
			for i, v := range values {
				if v == nil {
					continue
				}
				rows = append(rows, Observation{
					StationID: st.STID,
					Variable:  variable,
					Time:      times[i],
					Value:     *v,
				})
			}
		}
	}

	return rows, nil
}

func parseTimes(st station) ([]time.Time, error) {
	raw, ok := st.Observations["date_time"]
	if !ok {
		return nil, fmt.Errorf("station %s: response has no date_time column", st.STID)
	}

	var stamps []string
	if err := json.Unmarshal(raw, &stamps); err != nil {
		return nil, fmt.Errorf("station %s: decode date_time: %w", st.STID, err)
	}

	times := make([]time.Time, len(stamps))
	for i, s := range stamps {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, fmt.Errorf("station %s: parse timestamp %q: %w", st.STID, s, err)
		}
		times[i] = t.UTC()
	}
	return times, nil
}
