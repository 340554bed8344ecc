// Package sources defines the raw candidate model and the uniform
// adapter contract for external content indexes.
//
// Each subpackage implements one index: piratebay scrapes the HTML
// result table, yts talks to the JSON movie API. Adapters translate
// their index's failure modes into sources.Error values with a
// timeout/transport/decode kind so the fan-out coordinator can record
// them without caring which index produced them.
package sources
