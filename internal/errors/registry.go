package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

const docBase = "https://vango.dev/docs/vstore/errors/"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Configuration Errors (V001-V019)
	// ============================================

	"V001": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "The file given with --config does not exist. Without --config, vstore looks for vstore.toml, vstore.yaml and vstore.yml in the working directory and uses defaults when none exists.",
		DocURL:   docBase + "V001",
	},
	"V002": {
		Category: CategoryConfig,
		Message:  "Configuration file could not be parsed",
		Detail:   "The configuration file is not valid TOML or YAML.",
		DocURL:   docBase + "V002",
	},
	"V003": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is outside its allowed set.",
		DocURL:   docBase + "V003",
	},
	"V004": {
		Category: CategoryConfig,
		Message:  "Unknown storage backend",
		Detail:   "storage.backend must be one of memory, file, sqlite, s3 or remote.",
		DocURL:   docBase + "V004",
	},
	"V005": {
		Category: CategoryConfig,
		Message:  "Unsupported configuration format",
		Detail:   "Configuration files must end in .toml, .yaml or .yml.",
		DocURL:   docBase + "V005",
	},

	// ============================================
	// Storage Errors (V020-V039)
	// ============================================

	"V020": {
		Category: CategoryStorage,
		Message:  "Storage backend could not be opened",
		Detail:   "The configured storage backend failed to initialize.",
		DocURL:   docBase + "V020",
	},
	"V021": {
		Category: CategoryStorage,
		Message:  "Key not found",
		Detail:   "No value is stored under the requested key.",
		DocURL:   docBase + "V021",
	},
	"V022": {
		Category: CategoryStorage,
		Message:  "Stored value could not be decoded",
		Detail:   "The value stored under the key does not match the expected format.",
		DocURL:   docBase + "V022",
	},
	"V023": {
		Category: CategoryStorage,
		Message:  "Storage operation failed",
		Detail:   "The backend returned an error while reading, writing or deleting a key.",
		DocURL:   docBase + "V023",
	},

	// ============================================
	// CLI Errors (V040-V059)
	// ============================================

	"V040": {
		Category: CategoryCLI,
		Message:  "Invalid argument",
		Detail:   "A command argument could not be used.",
		DocURL:   docBase + "V040",
	},
	"V041": {
		Category: CategoryCLI,
		Message:  "Value is not a number",
		Detail:   "incr only works on keys holding a JSON number.",
		DocURL:   docBase + "V041",
	},

	// ============================================
	// Runtime Errors (V060-V079)
	// ============================================

	"V060": {
		Category: CategoryRuntime,
		Message:  "Server failed",
		Detail:   "The HTTP server stopped with an error.",
		DocURL:   docBase + "V060",
	},
	"V061": {
		Category: CategoryRuntime,
		Message:  "Watch failed",
		Detail:   "The storage backend stopped reporting changes.",
		DocURL:   docBase + "V061",
	},
}

// GetAllCodes returns all registered error codes in ascending order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
