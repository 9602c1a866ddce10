package config

import "sort"

var Presets = map[string]*Config{
	"notebook": {
		Name: "notebook", D: 100, Lx: 300, Dx: 0.5, CLeft: 500, CRight: 0, Nt: 5000,
		Boundary: "dirichlet",
	},
	"steady": {
		Name: "steady", D: 1, Lx: 10, Dx: 0.5, CLeft: 500, CRight: 0, Nt: 5000,
		Boundary: "dirichlet",
	},
	"fine": {
		Name: "fine", D: 100, Lx: 300, Dx: 0.25, CLeft: 500, CRight: 0, Nt: 20000,
		Boundary: "dirichlet",
	},
	"periodic": {
		Name: "periodic", D: 100, Lx: 300, Dx: 0.5, CLeft: 500, CRight: 0, Nt: 5000,
		Boundary: "periodic",
	},
	"reflective": {
		Name: "reflective", D: 100, Lx: 300, Dx: 0.5, CLeft: 500, CRight: 0, Nt: 5000,
		Boundary: "reflective",
	},
	"unstable": {
		Name: "unstable", D: 100, Lx: 300, Dx: 0.5, CLeft: 500, CRight: 0, Nt: 2000, Dt: 0.0015,
		Boundary: "dirichlet", ValidateField: true,
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
