// Package process manages the external processes the converters spawn: the
// LaTeX engine and the headless browser.
package process
