package naqfc

import (
	"errors"
	"fmt"
	"time"
)

const (
	awsRoot    = "https://noaa-nws-naqfc-pds.s3.amazonaws.com"
	nomadsRoot = "https://nomads.ncep.noaa.gov/pub/data/nccf/com/aqm/prod"
)

// Domain identifies the spatial domain of a forecast grid.
type Domain string

const (
	DomainCONUS  Domain = "conus"
	DomainAlaska Domain = "alaska"
	DomainHawaii Domain = "hawaii"
)

// ModelVersion tags the AQM version that was operational for a given cycle.
type ModelVersion string

const (
	AQMv5 ModelVersion = "AQMv5"
	AQMv6 ModelVersion = "AQMv6"
	AQMv7 ModelVersion = "AQMv7"
)

var (
	// ErrInvalidDomain is returned for a domain outside conus/alaska/hawaii.
	ErrInvalidDomain = errors.New("invalid domain")

	// ErrMalformedCycle is returned when a request carries a zero cycle time.
	ErrMalformedCycle = errors.New("malformed cycle time")
)

// Version epoch boundaries (lower bound of the named version, UTC).
var (
	aqmv6Start = time.Date(2021, time.July, 20, 0, 0, 0, 0, time.UTC)
	aqmv7Start = time.Date(2024, time.May, 14, 0, 0, 0, 0, time.UTC)
)

// gridCodes maps each domain to the NCEP grid number embedded in filenames.
var gridCodes = map[Domain]string{
	DomainCONUS:  "227",
	DomainAlaska: "198",
	DomainHawaii: "196",
}

// products lists the advertised product set per domain. The table is
// advisory: Resolve does not reject unknown products, so newly released
// products keep working without a code change.
var products = map[Domain][]string{
	DomainCONUS: {
		"max_8hr_o3",
		"ave_1hr_o3",
		"ave_8hr_o3",
		"max_1hr_o3",
		"ave_24hr_pm25",
		"ave_1hr_pm25",
		"max_1hr_pm25",
	},
	DomainAlaska: {
		"max_8hr_o3",
		"ave_1hr_o3",
		"ave_24hr_pm25",
		"ave_1hr_pm25",
	},
	DomainHawaii: {
		"max_8hr_o3",
		"ave_1hr_o3",
		"ave_24hr_pm25",
		"ave_1hr_pm25",
	},
}

// Request describes one forecast artifact to locate.
type Request struct {
	Cycle         time.Time // initialization time, date + hour, UTC
	Product       string
	Domain        Domain
	BiasCorrected bool
}

// NewRequest builds a Request with bias correction enabled, the
// operational default.
func NewRequest(cycle time.Time, product string, domain Domain) Request {
	return Request{
		Cycle:         cycle,
		Product:       product,
		Domain:        domain,
		BiasCorrected: true,
	}
}

// SourceSet holds the candidate retrieval locations for one artifact.
type SourceSet struct {
	AWS           string `json:"aws"`
	NOMADS        string `json:"nomads"`
	LocalFilename string `json:"local_filename"`
}

// AWSIndex returns the URL of the remote .idx sidecar on AWS.
func (s SourceSet) AWSIndex() string { return s.AWS + ".idx" }

// NOMADSIndex returns the URL of the remote .idx sidecar on NOMADS.
func (s SourceSet) NOMADSIndex() string { return s.NOMADS + ".idx" }

// ResolveVersion returns the AQM version operational at t. Total over all
// timestamps; boundaries are evaluated on the UTC clock.
func ResolveVersion(t time.Time) ModelVersion {
	t = t.UTC()
	switch {
	case t.Before(aqmv6Start):
		return AQMv5
	case t.Before(aqmv7Start):
		return AQMv6
	default:
		return AQMv7
	}
}

// GridCode returns the NCEP grid number for a domain.
func GridCode(domain Domain) (string, error) {
	grid, ok := gridCodes[domain]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidDomain, domain)
	}
	return grid, nil
}

// Products returns the advertised product set for a domain, in the order
// NCO documents them (the first entry is the operational default). Returns
// nil for an unknown domain.
func Products(domain Domain) []string {
	advertised, ok := products[domain]
	if !ok {
		return nil
	}
	out := make([]string, len(advertised))
	copy(out, advertised)
	return out
}

// ProductAdvertised reports whether product appears in the domain's
// advertised set.
func ProductAdvertised(domain Domain, product string) bool {
	for _, p := range products[domain] {
		if p == product {
			return true
		}
	}
	return false
}

// Resolve maps a request to its candidate retrieval locations and the
// expected local filename. It validates the domain and cycle but stays
// permissive about the product string.
func Resolve(req Request) (SourceSet, error) {
	grid, err := GridCode(req.Domain)
	if err != nil {
		return SourceSet{}, err
	}
	if req.Cycle.IsZero() {
		return SourceSet{}, ErrMalformedCycle
	}

	cycle := req.Cycle.UTC()
	version := ResolveVersion(cycle)

	date := cycle.Format("20060102")
	hour := cycle.Format("15")

	suffix := ""
	if req.BiasCorrected {
		suffix = "_bc"
	}

	filename := fmt.Sprintf("aqm.t%sz.%s%s.%s.%s.grib2", hour, req.Product, suffix, date, grid)

	return SourceSet{
		AWS:           fmt.Sprintf("%s/%s/CS/%s/%s/%s", awsRoot, version, date, hour, filename),
		NOMADS:        fmt.Sprintf("%s/aqm.%s/aqm.t%sz.%s%s.%s.grib2", nomadsRoot, date, hour, req.Product, suffix, grid),
		LocalFilename: filename,
	}, nil
}
