// Package logging builds slog loggers for dinger with console and JSON
// handlers, shared attribute helpers, and the standard field vocabulary used
// across components. Components obtain a child logger via NewComponentLogger
// so every record carries a stable component attribute.
package logging
