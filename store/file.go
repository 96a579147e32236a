package store

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	slogcontext "github.com/veqryn/slog-context"
	"sigs.k8s.io/yaml"

	"github.com/tzperiods/builder"
	"github.com/tzperiods/gregorian"
	"github.com/tzperiods/period"
	"github.com/tzperiods/rules"
)

//go:embed tables.schema.json
var tablesSchema []byte

var ErrInvalidDocument = errors.New("invalid table document")

// tableDocument is the YAML form of a File:
//
//	rules:
//	  US:
//	    - {in: Mar, day: "Sun>=8", at: "2:00", save: "1:00", letter: D}
//	    - {in: Nov, day: "Sun>=1", at: "2:00", save: "0", letter: S}
//	zones:
//	  America/New_York:
//	    periods:
//	      - {utcOffset: "-4:56:02", abbreviation: LMT}
//	      - {from: "1883-11-18T17:00:00Z", utcOffset: "-5", abbreviation: EST}
//	    rule: {name: US, stdOffset: "-5", format: "E%sT", since: "2007-01-01T07:00:00Z", fromYear: 2007, throughYear: 2037}
//
// Periods are listed oldest first and only the first one has no from. A
// zone rule governs the zone from since onward, or always when the zone
// lists no periods.
type tableDocument struct {
	Rules map[string][]ruleDocument `json:"rules,omitempty"`
	Zones map[string]zoneDocument   `json:"zones,omitempty"`
}

type ruleDocument struct {
	In     string `json:"in"`
	Day    string `json:"day"`
	At     string `json:"at"`
	Save   string `json:"save,omitempty"`
	Letter string `json:"letter,omitempty"`
}

type periodDocument struct {
	From         string `json:"from,omitempty"`
	UTCOffset    string `json:"utcOffset"`
	Save         string `json:"save,omitempty"`
	Abbreviation string `json:"abbreviation"`
}

type zoneRuleDocument struct {
	Name        string `json:"name"`
	StdOffset   string `json:"stdOffset"`
	Format      string `json:"format"`
	Since       string `json:"since,omitempty"`
	FromYear    int    `json:"fromYear"`
	ThroughYear int    `json:"throughYear"`
}

type zoneDocument struct {
	Periods []periodDocument  `json:"periods,omitempty"`
	Rule    *zoneRuleDocument `json:"rule,omitempty"`
}

// File holds the zones and rule pairs declared by YAML table documents. It
// is both a Periods store and a rules.Store.
type File struct {
	tables *Memory
	rules  *rules.Memory
}

// LoadFile reads and compiles a table document.
func LoadFile(ctx context.Context, path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := ParseFile(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// ParseFile validates a YAML table document against its schema and
// compiles every zone into a transition table.
func ParseFile(ctx context.Context, data []byte) (*File, error) {
	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	if err := validateDocument(jsonData); err != nil {
		return nil, err
	}
	var doc tableDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	logger := slogcontext.FromCtx(ctx)
	f := &File{tables: NewMemory(), rules: rules.NewMemory()}
	for _, id := range sortedKeys(doc.Rules) {
		var pair rules.Pair
		for i, rd := range doc.Rules[id] {
			r, err := rd.rule(id)
			if err != nil {
				return nil, fmt.Errorf("%w: rule %s: %w", ErrInvalidDocument, id, err)
			}
			pair[i] = r
		}
		f.rules.Add(id, pair)
	}
	for _, name := range sortedKeys(doc.Zones) {
		tbl, err := doc.Zones[name].table(f.rules)
		if err != nil {
			return nil, fmt.Errorf("%w: zone %s: %w", ErrInvalidDocument, name, err)
		}
		if err := f.tables.Add(name, tbl); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
		logger.Debug("compiled zone", "zone", name, "records", len(tbl))
	}
	return f, nil
}

func (f *File) Periods(ctx context.Context, zone string) (period.Table, error) {
	return f.tables.Periods(ctx, zone)
}

func (f *File) Zones(ctx context.Context) ([]string, error) {
	return f.tables.Zones(ctx)
}

func (f *File) Rules(id string) (rules.Pair, error) {
	return f.rules.Rules(id)
}

// compiledTablesSchema compiles the embedded schema on first use.
var compiledTablesSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	schemaDoc, err := jsonschema.UnmarshalJSON(bytes.NewReader(tablesSchema))
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("tables.schema.json", schemaDoc); err != nil {
		return nil, err
	}
	return compiler.Compile("tables.schema.json")
})

func validateDocument(jsonData []byte) error {
	schema, err := compiledTablesSchema()
	if err != nil {
		return err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	if err := schema.Validate(inst); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return nil
}

func (rd ruleDocument) rule(name string) (rules.Rule, error) {
	r := rules.Rule{Name: name, Letter: rd.Letter}
	var err error
	if r.In, err = rules.ParseMonth(rd.In); err != nil {
		return r, err
	}
	if r.On, err = rules.ParseDay(rd.Day); err != nil {
		return r, err
	}
	if r.At, err = rules.ParseAt(rd.At); err != nil {
		return r, err
	}
	if r.Save, err = rules.ParseSave(rd.Save); err != nil {
		return r, err
	}
	return r, nil
}

func (pd periodDocument) period() (period.Period, error) {
	off, err := rules.ParseDuration(pd.UTCOffset)
	if err != nil {
		return period.Period{}, err
	}
	save, err := rules.ParseSave(pd.Save)
	if err != nil {
		return period.Period{}, err
	}
	return period.Period{UTCOffset: off, StdOffset: save, Abbreviation: pd.Abbreviation}, nil
}

func parseInstant(s string) (int64, error) {
	dt, err := gregorian.ParseDateTime(s)
	if err != nil {
		return 0, err
	}
	return gregorian.ToSeconds(dt), nil
}

// table compiles the zone, most recent record first.
func (zd zoneDocument) table(store rules.Store) (period.Table, error) {
	spans := make([]builder.Span, 0, len(zd.Periods))
	for i, pd := range zd.Periods {
		p, err := pd.period()
		if err != nil {
			return nil, fmt.Errorf("period %d: %w", i, err)
		}
		from := period.Always
		switch {
		case i == 0 && pd.From != "":
			return nil, fmt.Errorf("period 0 starts at %s, the oldest period applies always", pd.From)
		case i > 0 && pd.From == "":
			return nil, fmt.Errorf("period %d has no start", i)
		case i > 0:
			if from, err = parseInstant(pd.From); err != nil {
				return nil, fmt.Errorf("period %d: %w", i, err)
			}
		}
		spans = append(spans, builder.Span{From: from, Period: p})
	}
	history := builder.Normalize(spans)
	if zd.Rule == nil {
		return history, nil
	}

	zr := zd.Rule
	pair, err := store.Rules(zr.Name)
	if err != nil {
		return nil, err
	}
	std, err := rules.ParseDuration(zr.StdOffset)
	if err != nil {
		return nil, fmt.Errorf("standard offset: %w", err)
	}
	zone := builder.Zone{StdOffset: std, Rule: zr.Name, Format: zr.Format, From: period.Always, Until: period.Never}
	if len(spans) > 0 {
		if zr.Since == "" {
			return nil, errors.New("a rule following periods needs a since instant")
		}
		if zone.From, err = parseInstant(zr.Since); err != nil {
			return nil, fmt.Errorf("since: %w", err)
		}
		before := spans[len(spans)-1].Period
		zone.Before = &before
	}
	compiled, err := builder.Compile(zone, pair, zr.FromYear, zr.ThroughYear)
	if err != nil {
		return nil, err
	}
	return append(compiled, history...), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
