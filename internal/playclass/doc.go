// Package playclass detects productive-out play categories from normalized
// play descriptions. Classification is table-driven: an ordered list of
// (category, keyword-set) pairs is evaluated first-match-wins, with keyword
// heuristics as a fallback for descriptions the table misses.
package playclass
