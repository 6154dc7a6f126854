package kafka

import (
	"testing"
	"time"

	"github.com/couchcryptid/naqfc-fetch/internal/naqfc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeToMessage(t *testing.T) {
	cycle := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	artifact := naqfc.Artifact{
		Product:       "max_8hr_o3",
		Domain:        naqfc.DomainCONUS,
		Cycle:         cycle,
		Version:       naqfc.AQMv6,
		BiasCorrected: true,
		Source:        "aws",
		Path:          "data/aqm.t12z.max_8hr_o3_bc.20240115.227.grib2",
		Bytes:         123456,
		FetchedAt:     cycle.Add(2 * time.Hour),
	}

	msg, err := serializeToMessage(artifact)
	require.NoError(t, err)

	assert.Equal(t, []byte("conus-max_8hr_o3-2024011512"), msg.Key)
	assert.Contains(t, string(msg.Value), `"version":"AQMv6"`)
	assert.Contains(t, string(msg.Value), `"source":"aws"`)

	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "product", msg.Headers[0].Key)
	assert.Equal(t, []byte("max_8hr_o3"), msg.Headers[0].Value)
	assert.Equal(t, "domain", msg.Headers[1].Key)
	assert.Equal(t, []byte("conus"), msg.Headers[1].Value)
	assert.Equal(t, "cycle", msg.Headers[2].Key)
	assert.Equal(t, []byte("2024-01-15T12:00:00Z"), msg.Headers[2].Value)
}
