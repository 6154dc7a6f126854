// Package naqfc resolves retrieval locations for NOAA Air Quality Model
// (AQM / NAQFC) forecast artifacts.
//
// # Data Sources
//
// The National Air Quality Forecast Capability publishes CMAQ-based ozone
// and PM2.5 forecasts to two archives:
//
//	AWS:    https://noaa-nws-naqfc-pds.s3.amazonaws.com/  (historical, back to Jan 2020)
//	NOMADS: https://nomads.ncep.noaa.gov/pub/data/nccf/com/aqm/prod/  (current operational run only)
//
// The AWS archive partitions objects by model version and cycle date; NOMADS
// keeps only the latest run and has neither a version segment nor a trailing
// date in its filenames.
//
// # Model Versions
//
// The operational AQM version is determined entirely by the forecast cycle
// date (half-open intervals, lower bound inclusive):
//
//	before 2021-07-20            AQMv5
//	2021-07-20 .. 2024-05-13     AQMv6
//	2024-05-14 onward            AQMv7
//
// # Filename Conventions
//
// Artifacts follow the NCO naming scheme:
//
//	aqm.t<HH>z.<product><_bc?>.<YYYYMMDD>.<grid>.grib2
//
// where <grid> identifies the spatial domain (227 CONUS, 198 Alaska,
// 196 Hawaii) and the optional "_bc" token selects the bias-corrected
// variant of the product. Each .grib2 object has a remote ".idx" sidecar
// describing its GRIB record offsets.
//
// # Forecast Cycles
//
// The model runs twice daily, initialized at 06Z and 12Z, producing 72-hour
// forecasts. [LatestCycle] returns the most recent initialization time.
//
// Resolution is pure string construction: no network I/O, no validation
// that a resolved URL exists, and no caching. Retrieval order and
// fallback policy belong to the caller.
package naqfc
