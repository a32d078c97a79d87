package config

var Presets = map[string]map[string]*Config{
	"exponential": {
		"quick": {
			Problem: "exponential", Backend: "host", Stepper: "euler",
			Dt: 0.01, Duration: 1.0,
		},
		"fine": {
			Problem: "exponential", Backend: "host", Stepper: "rk45",
			Dt: 0.001, Duration: 5.0,
		},
		"gpu": {
			Problem: "exponential", Backend: "gpu", Stepper: "euler",
			Dt: 0.01, Duration: 1.0,
		},
	},
	"vanderpol": {
		"cycle": {
			Problem: "vanderpol", Backend: "host", Stepper: "rk45",
			Dt: 0.01, Duration: 20.0,
		},
		"gpu": {
			Problem: "vanderpol", Backend: "gpu", Stepper: "euler",
			Dt: 0.001, Duration: 20.0,
		},
	},
	"lorenz": {
		"butterfly": {
			Problem: "lorenz", Backend: "host", Stepper: "rk45",
			Dt: 0.005, Duration: 10.0,
		},
	},
	"harmonic": {
		"period": {
			Problem: "harmonic", Backend: "host", Stepper: "rk45",
			Dt: 0.01, Duration: 6.3,
		},
	},
}

func GetPreset(problem, preset string) *Config {
	problemPresets, ok := Presets[problem]
	if !ok {
		return nil
	}
	cfg, ok := problemPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(problem string) []string {
	problemPresets, ok := Presets[problem]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(problemPresets))
	for name := range problemPresets {
		names = append(names, name)
	}
	return names
}
