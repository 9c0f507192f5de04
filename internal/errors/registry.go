package errors

import "sort"

// Template defines a registered error type.
type Template struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// ============================================
	// Construction Errors (O001-O099)
	// ============================================

	"O001": {
		Category: CategoryConstruction,
		Message:  "Missing data",
		Detail:   "The store description has no data.",
	},
	"O002": {
		Category: CategoryConstruction,
		Message:  "Invalid data shape",
		Detail:   "The data property must be an object of fields.",
	},
	"O003": {
		Category: CategoryConstruction,
		Message:  "Reserved name in data",
	},

	// ============================================
	// Runtime Errors (O100-O199)
	// ============================================

	"O101": {
		Category: CategoryRuntime,
		Message:  "Unknown field",
	},
	"O102": {
		Category: CategoryRuntime,
		Message:  "Unknown computed",
	},
	"O103": {
		Category: CategoryRuntime,
		Message:  "Unknown action",
	},

	// ============================================
	// Load Errors (O200-O299)
	// ============================================

	"O201": {
		Category: CategoryLoad,
		Message:  "Description file could not be read",
	},
	"O202": {
		Category: CategoryLoad,
		Message:  "Description file could not be parsed",
	},

	// ============================================
	// Config Errors (O300-O399)
	// ============================================

	"O301": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
	},
	"O302": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
	},

	// ============================================
	// Internal Errors (O900-O999)
	// ============================================

	"O901": {
		Category: CategoryInternal,
		Message:  "Hook order changed between render passes",
		Detail:   "Cells must be requested in the same order on every pass",
	},
}

// GetAllCodes returns all registered error codes in sorted order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
