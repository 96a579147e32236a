package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
	"sigs.k8s.io/yaml"

	"github.com/tzperiods/gregorian"
	"github.com/tzperiods/period"
	"github.com/tzperiods/resolve"
)

type encoding string

const (
	encodingText encoding = "text"
	encodingJSON encoding = "json"
	encodingYAML encoding = "yaml"
)

func (e *encoding) String() string { return string(*e) }

func (e *encoding) Set(s string) error {
	switch enc := encoding(strings.ToLower(s)); enc {
	case encodingText, encodingJSON, encodingYAML:
		*e = enc
		return nil
	}
	return fmt.Errorf("unknown output format %q, use text, json or yaml", s)
}

func (e *encoding) Type() string { return "encoding" }

func encodingVarP(f *pflag.FlagSet, p *encoding, name, shorthand, usage string) {
	*p = encodingText
	f.VarP(p, name, shorthand, usage)
}

type texter interface {
	text() string
}

func encode(w io.Writer, enc encoding, v texter) error {
	var data []byte
	var err error
	switch enc {
	case encodingText:
		_, err = fmt.Fprintln(w, v.text())
		return err
	case encodingJSON:
		data, err = json.MarshalIndent(v, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	case encodingYAML:
		data, err = yaml.Marshal(v)
	default:
		return fmt.Errorf("unknown output format %q", enc)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

type utcResult struct {
	Zone    string        `json:"zone"`
	Instant string        `json:"instant"`
	Unix    int64         `json:"unix"`
	Wall    string        `json:"wall"`
	Period  period.Period `json:"period"`
	Offset  string        `json:"offset"`
}

func newUTCResult(zone string, secs int64, p period.Period) utcResult {
	return utcResult{
		Zone:    zone,
		Instant: gregorian.FromSeconds(secs).String() + "Z",
		Unix:    gregorian.ToUnix(secs),
		Wall:    gregorian.FromSeconds(secs + int64(p.TotalOffset())).String(),
		Period:  p,
		Offset:  period.FormatOffset(p.TotalOffset()),
	}
}

func (r utcResult) text() string {
	return fmt.Sprintf("%s %s %s %s", r.Instant, r.Zone, r.Wall, r.Period)
}

type boundaryResult struct {
	Period period.Period `json:"period"`
	Wall   string        `json:"wall"`
}

type wallResult struct {
	Zone   string         `json:"zone"`
	Wall   string         `json:"wall"`
	Kind   string         `json:"kind"`
	Period *period.Period `json:"period,omitempty"`
	UTC    string         `json:"utc,omitempty"`

	Departing *boundaryResult `json:"departing,omitempty"`
	Arriving  *boundaryResult `json:"arriving,omitempty"`

	Former *period.Period `json:"former,omitempty"`
	Latter *period.Period `json:"latter,omitempty"`
}

func newWallResult(zone string, dt gregorian.DateTime, res resolve.WallResolution) wallResult {
	r := wallResult{Zone: zone, Wall: dt.String(), Kind: res.Kind.String()}
	switch res.Kind {
	case period.Unambiguous:
		r.Period = &res.Period
		r.UTC = gregorian.FromSeconds(gregorian.ToSeconds(dt)-int64(res.Period.TotalOffset())).String() + "Z"
	case period.Gap:
		r.Departing = &boundaryResult{Period: res.Departing.Period, Wall: res.Departing.Wall.String()}
		r.Arriving = &boundaryResult{Period: res.Arriving.Period, Wall: res.Arriving.Wall.String()}
	case period.Ambiguous:
		r.Former = &res.Former
		r.Latter = &res.Latter
	}
	return r
}

func (r wallResult) text() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s %s", r.Wall, r.Zone, r.Kind)
	switch {
	case r.Period != nil:
		fmt.Fprintf(&sb, " %s = %s", r.Period, r.UTC)
	case r.Departing != nil:
		fmt.Fprintf(&sb, "\n  departing %s until %s", r.Departing.Period, r.Departing.Wall)
		fmt.Fprintf(&sb, "\n  arriving  %s from %s", r.Arriving.Period, r.Arriving.Wall)
	case r.Former != nil:
		fmt.Fprintf(&sb, "\n  former %s", r.Former)
		fmt.Fprintf(&sb, "\n  latter %s", r.Latter)
	}
	return sb.String()
}
