package importer

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/piwi3910/BlockPack/internal/model"
)

// Job is a TOML job file: a space, a block list and optional search overrides.
//
//	name = "shelf"
//
//	[space]
//	width = 20
//	height = 12
//
//	[[blocks]]
//	label = "door"
//	width = 4
//	height = 6
//	quantity = 2
//
//	[engine]
//	population = 20
//	efficiency_limit = 0.95
type Job struct {
	Name   string     `toml:"name"`
	Space  model.Space `toml:"space"`
	Blocks []JobBlock  `toml:"blocks"`
	Engine JobEngine   `toml:"engine"`
}

// JobBlock is one [[blocks]] entry. Quantity 0 means 1.
type JobBlock struct {
	Label    string `toml:"label"`
	Width    int    `toml:"width"`
	Height   int    `toml:"height"`
	Quantity int    `toml:"quantity"`
}

// JobEngine holds optional search overrides. Zero values mean "use the default".
type JobEngine struct {
	PopulationSize  int     `toml:"population"`
	EfficiencyLimit float64 `toml:"efficiency_limit"`
	MaxGenerations  int     `toml:"max_generations"`
	TimeLimit       string  `toml:"time_limit"` // Go duration, e.g. "30s"
	Workers         int     `toml:"workers"`
	Seed            int64   `toml:"seed"`
}

// Duration parses TimeLimit; an empty value is zero.
func (e JobEngine) Duration() (time.Duration, error) {
	if e.TimeLimit == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(e.TimeLimit)
	if err != nil {
		return 0, model.WrapError(model.ErrCodeInvalidConfig, err, "invalid time_limit %q", e.TimeLimit)
	}
	return d, nil
}

// ReadJob reads and validates a TOML job file.
func ReadJob(path string) (Job, error) {
	var job Job
	if _, err := toml.DecodeFile(path, &job); err != nil {
		return Job{}, model.WrapError(model.ErrCodeInvalidInput, err, "failed to parse job %s", path)
	}
	if job.Name == "" {
		job.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if _, err := job.Problem(); err != nil {
		return Job{}, err
	}
	if _, err := job.Engine.Duration(); err != nil {
		return Job{}, err
	}
	return job, nil
}

// ParseJob decodes a TOML job from a string.
func ParseJob(data string) (Job, error) {
	var job Job
	if err := toml.Unmarshal([]byte(data), &job); err != nil {
		return Job{}, model.WrapError(model.ErrCodeInvalidInput, err, "failed to parse job")
	}
	return job, nil
}

// Problem expands the job's block list into a catalog.
func (j Job) Problem() (model.Problem, error) {
	p := model.Problem{Name: j.Name, Space: j.Space}
	for _, b := range j.Blocks {
		qty := b.Quantity
		if qty == 0 {
			qty = 1
		}
		if qty < 0 {
			return model.Problem{}, model.NewError(model.ErrCodeInvalidInput, "block %q has negative quantity %d", b.Label, b.Quantity)
		}
		for i := 0; i < qty; i++ {
			p.Blocks = append(p.Blocks, model.Block{Label: b.Label, Width: b.Width, Height: b.Height})
		}
	}
	p.Renumber()
	if err := p.Validate(); err != nil {
		return model.Problem{}, err
	}
	return p, nil
}

// WriteJob encodes a problem as a TOML job, one [[blocks]] entry per block.
func WriteJob(path string, p model.Problem) error {
	job := Job{Name: p.Name, Space: p.Space}
	for _, b := range p.Blocks {
		job.Blocks = append(job.Blocks, JobBlock{Label: b.Label, Width: b.Width, Height: b.Height, Quantity: 1})
	}
	data, err := toml.Marshal(job)
	if err != nil {
		return model.WrapError(model.ErrCodeInvalidInput, err, "failed to encode job")
	}
	return os.WriteFile(path, data, 0644)
}
