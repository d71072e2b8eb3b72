// Package tables registers the built-in datasets and forms.
// Import it for side effects to make them available to the service.
package tables

// This file exists to provide a single import point.
// Each dataset file uses init() to register its tables.
