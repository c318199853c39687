package config

// Built-in profiles.
const (
	ProfileProduction  = "production"
	ProfileDevelopment = "development"
	ProfileTest        = "test"
)

// presets are overlays applied on top of the defaults for each built-in
// profile, before the config file.
var presets = map[string]map[string]any{
	ProfileProduction: {},
	ProfileDevelopment: {
		"log_level": "debug",
		"locale":    "en",
		"storage": map[string]any{
			"sweep_interval": "5m",
		},
	},
	ProfileTest: {
		"log_level": "error",
		"locale":    "en",
		"storage": map[string]any{
			"driver":         DriverMemory,
			"sweep_interval": "0s",
		},
		"notifications": map[string]any{
			"persist": false,
		},
	},
}

// Profiles returns the names of the built-in profiles.
func Profiles() []string {
	return []string{ProfileProduction, ProfileDevelopment, ProfileTest}
}
