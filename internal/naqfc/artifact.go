package naqfc

import "time"

// Artifact describes a forecast file that has been fetched to local disk.
// It is the payload published to the notification topic.
type Artifact struct {
	Product       string       `json:"product"`
	Domain        Domain       `json:"domain"`
	Cycle         time.Time    `json:"cycle"`
	Version       ModelVersion `json:"version"`
	BiasCorrected bool         `json:"bias_corrected"`
	Source        string       `json:"source"` // "aws" or "nomads"
	Path          string       `json:"path"`
	Bytes         int64        `json:"bytes"`
	FetchedAt     time.Time    `json:"fetched_at"`
}

// ID returns a stable identifier for the artifact, suitable as a message
// key so replays of the same cycle land on the same partition.
func (a Artifact) ID() string {
	return string(a.Domain) + "-" + a.Product + "-" + a.Cycle.UTC().Format("2006010215")
}
