package query

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/kdeps/audiodepot/pkg/audio"
	audioErrors "github.com/kdeps/audiodepot/pkg/errors"
)

// Query parameter names accepted by /list.
const (
	ParamMinDuration = "minduration"
	ParamMaxDuration = "maxduration"
	ParamMinBitrate  = "minbitrate"
	ParamMaxBitrate  = "maxbitrate"
	ParamChannels    = "channels"
	ParamSampleRate  = "sample_rate"
	ParamVerbose     = "verbose"
	ParamName        = "name"
)

// Params is a parsed /list query.
type Params struct {
	Filter  audio.Filter
	Verbose bool
}

// ParseParams reads the filter and verbose flag from values. Absent or empty
// parameters leave their bound open; malformed numbers are rejected.
func ParseParams(values url.Values) (Params, error) {
	var (
		p   Params
		err error
	)
	if p.Filter.MinDuration, err = floatParam(values, ParamMinDuration); err != nil {
		return p, err
	}
	if p.Filter.MaxDuration, err = floatParam(values, ParamMaxDuration); err != nil {
		return p, err
	}
	if p.Filter.MinBitrate, err = intParam(values, ParamMinBitrate); err != nil {
		return p, err
	}
	if p.Filter.MaxBitrate, err = intParam(values, ParamMaxBitrate); err != nil {
		return p, err
	}
	if p.Filter.Channels, err = intParam(values, ParamChannels); err != nil {
		return p, err
	}
	if p.Filter.SampleRate, err = intParam(values, ParamSampleRate); err != nil {
		return p, err
	}
	p.Verbose = IsTrue(values.Get(ParamVerbose))
	return p, nil
}

// IsTrue accepts "true" in any case and "1".
func IsTrue(value string) bool {
	value = strings.TrimSpace(value)
	return value == "1" || strings.EqualFold(value, "true")
}

func floatParam(values url.Values, key string) (*float64, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, audioErrors.NewInvalidParameterError(key, raw, err)
	}
	return &v, nil
}

func intParam(values url.Values, key string) (*int, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, audioErrors.NewInvalidParameterError(key, raw, err)
	}
	return &v, nil
}
