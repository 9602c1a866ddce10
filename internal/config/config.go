package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/diffsim/internal/diffusion"
)

const DefaultName = "notebook"

// Config is the on-disk run description. The YAML keys D, Lx, dx, C_left,
// C_right, nt and dt mirror the symbols of the discretised equation.
type Config struct {
	Name          string  `yaml:"name"`
	D             float64 `yaml:"D" validate:"gt=0"`
	Lx            float64 `yaml:"Lx" validate:"gt=0"`
	Dx            float64 `yaml:"dx" validate:"gt=0"`
	CLeft         float64 `yaml:"C_left"`
	CRight        float64 `yaml:"C_right"`
	Nt            int     `yaml:"nt" validate:"gte=0"`
	Dt            float64 `yaml:"dt,omitempty" validate:"gte=0"`
	Boundary      string  `yaml:"boundary,omitempty" validate:"omitempty,oneof=dirichlet periodic reflective"`
	Strict        bool    `yaml:"strict,omitempty"`
	ValidateField bool    `yaml:"validate,omitempty"`
	SnapshotEvery int     `yaml:"snapshot_every,omitempty" validate:"gte=0"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func Default() *Config {
	p := diffusion.DefaultParams()
	return &Config{
		Name:     DefaultName,
		D:        p.D,
		Lx:       p.Lx,
		Dx:       p.Dx,
		CLeft:    p.CLeft,
		CRight:   p.CRight,
		Nt:       p.Nt,
		Boundary: diffusion.Dirichlet.String(),
	}
}

// Load reads a YAML file on top of Default and validates the result.
func Load(path string) (*Config, error) {
	return LoadInto(path, Default())
}

// LoadInto reads a YAML file on top of a copy of base; keys absent from the
// file keep base's values. base is not modified.
func LoadInto(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, cfg); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func Encode(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}

// Validate checks struct tags first, then the numeric invariants the tags
// cannot express (finite values). Failures come back as
// *diffusion.InvalidParameterError named by YAML key.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			reason := fe.Tag()
			if fe.Param() != "" {
				reason += "=" + fe.Param()
			}
			return &diffusion.InvalidParameterError{Name: fe.Field(), Value: fe.Value(), Reason: "failed " + reason}
		}
		return err
	}
	return c.Params().Validate()
}

func (c *Config) Params() diffusion.Params {
	return diffusion.Params{
		D:      c.D,
		Lx:     c.Lx,
		Dx:     c.Dx,
		CLeft:  c.CLeft,
		CRight: c.CRight,
		Nt:     c.Nt,
		Dt:     c.Dt,
	}
}

func (c *Config) BoundaryKind() (diffusion.Boundary, error) {
	return diffusion.ParseBoundary(c.Boundary)
}

// Options translates the run switches into simulator options.
func (c *Config) Options(logger *slog.Logger) ([]diffusion.Option, error) {
	b, err := c.BoundaryKind()
	if err != nil {
		return nil, err
	}
	opts := []diffusion.Option{
		diffusion.WithBoundary(b),
		diffusion.WithLogger(logger),
	}
	if c.Strict {
		opts = append(opts, diffusion.WithStrictStability())
	}
	if c.ValidateField {
		opts = append(opts, diffusion.WithFieldValidation())
	}
	if c.SnapshotEvery > 0 {
		opts = append(opts, diffusion.WithSnapshotEvery(c.SnapshotEvery))
	}
	return opts, nil
}

// NewSimulator validates the config and builds a simulator from it.
func (c *Config) NewSimulator(logger *slog.Logger) (*diffusion.Simulator, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	opts, err := c.Options(logger)
	if err != nil {
		return nil, err
	}
	return diffusion.New(c.Params(), opts...)
}

func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
