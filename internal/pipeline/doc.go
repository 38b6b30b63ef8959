// Package pipeline loads the two hit tables into bucket indices, one
// goroutine per origin, and hands them to the resolver.
//
// Malformed rows either abort the load or are counted and reported through
// Config.OnSkip; the pipeline itself neither logs nor prints.
package pipeline
